package domain

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// History page size limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const cursorPrefix = "seq:"

// HistoryFilter selects a page of journal entries, newest first.
//
// Since is inclusive and Until exclusive; zero values leave the range open.
type HistoryFilter struct {
	Since  time.Time
	Until  time.Time
	Kinds  []EntryKind
	Cursor string
	Limit  int
}

// EntryQuery is the storage level form of HistoryFilter.
//
// BeforeSequence of zero means "from the newest entry".
type EntryQuery struct {
	AccountID      string
	Since          time.Time
	Until          time.Time
	Kinds          []EntryKind
	BeforeSequence int64
	Limit          int
}

// EntryPage is one page of journal entries.
type EntryPage struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// SummaryFilter selects the journal range aggregated by a Summary.
type SummaryFilter struct {
	Since time.Time
	Until time.Time
	Kinds []EntryKind
}

// Summary aggregates journal entries.
type Summary struct {
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"` // negative or zero
	NetChange    decimal.Decimal `json:"net_change"`
	Count        int64           `json:"count"`
}

// Add accounts the entry in the summary.
func (s *Summary) Add(e Entry) {
	if e.Amount.IsPositive() {
		s.TotalCredits = s.TotalCredits.Add(e.Amount)
	} else {
		s.TotalDebits = s.TotalDebits.Add(e.Amount)
	}

	s.NetChange = s.NetChange.Add(e.Amount)
	s.Count++
}

// Discrepancy is a single reconciliation mismatch.
type Discrepancy struct {
	EntryID  string `json:"entry_id,omitempty"`
	Sequence int64  `json:"sequence"`
	Field    string `json:"field"`
	Want     string `json:"want"`
	Got      string `json:"got"`
}

// ReconcileReport is the outcome of replaying an account journal.
type ReconcileReport struct {
	AccountID       string          `json:"account_id"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	StoredVersion   int64           `json:"stored_version"`
	EntryCount      int64           `json:"entry_count"`
	Discrepancies   []Discrepancy   `json:"discrepancies,omitempty"`
}

// Consistent reports whether the replay found no discrepancy.
func (r ReconcileReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// CheckTimeRange validates an optional since/until pair.
func CheckTimeRange(since, until time.Time) error {
	if !since.IsZero() && !until.IsZero() && since.After(until) {
		return ErrInvalidTimeRange
	}

	return nil
}

// CheckKinds validates entry kind filters.
func CheckKinds(kinds []EntryKind) error {
	for _, k := range kinds {
		if !k.Valid() {
			return ErrInvalidKind
		}
	}

	return nil
}

// EncodeCursor returns an opaque continuation token pointing below sequence.
func EncodeCursor(sequence int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.FormatInt(sequence, 10)))
}

// DecodeCursor returns the sequence encoded by EncodeCursor. An empty cursor decodes to zero.
func DecodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	s := string(raw)
	if !strings.HasPrefix(s, cursorPrefix) {
		return 0, ErrInvalidCursor
	}

	seq, err := strconv.ParseInt(strings.TrimPrefix(s, cursorPrefix), 10, 64)
	if err != nil || seq <= 0 {
		return 0, ErrInvalidCursor
	}

	return seq, nil
}
