// Package journalservice manages the read side of the transaction journal.
package journalservice

import (
	"context"

	"github.com/go-petr/trade-ledger/internal/domain"
)

// Store provides data access layer interface needed by journal service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package journalservice
type Store interface {
	ListEntries(ctx context.Context, q domain.EntryQuery) (domain.EntryPage, error)
	GetEntry(ctx context.Context, id string) (domain.Entry, error)
}

// Service facilitates journal service layer logic.
type Service struct {
	store Store
}

// New returns journal service struct to query account history.
func New(store Store) *Service {
	return &Service{store: store}
}

func entryQuery(accountID string, f domain.HistoryFilter) (domain.EntryQuery, error) {
	if err := domain.CheckTimeRange(f.Since, f.Until); err != nil {
		return domain.EntryQuery{}, err
	}

	if err := domain.CheckKinds(f.Kinds); err != nil {
		return domain.EntryQuery{}, err
	}

	before, err := domain.DecodeCursor(f.Cursor)
	if err != nil {
		return domain.EntryQuery{}, err
	}

	limit := f.Limit

	switch {
	case limit <= 0:
		limit = domain.DefaultPageSize
	case limit > domain.MaxPageSize:
		limit = domain.MaxPageSize
	}

	return domain.EntryQuery{
		AccountID:      accountID,
		Since:          f.Since,
		Until:          f.Until,
		Kinds:          f.Kinds,
		BeforeSequence: before,
		Limit:          limit,
	}, nil
}

// History returns one page of the account journal, newest first.
//
// The page's NextCursor continues right below its last entry, so pages stay
// stable while new entries are being committed.
func (s *Service) History(ctx context.Context, accountID string, f domain.HistoryFilter) (domain.EntryPage, error) {
	q, err := entryQuery(accountID, f)
	if err != nil {
		return domain.EntryPage{}, err
	}

	return s.store.ListEntries(ctx, q)
}

// Entries walks every page of the filtered journal and returns all entries, newest first.
func (s *Service) Entries(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Entry, error) {
	f.Limit = domain.MaxPageSize

	entries := []domain.Entry{}

	err := s.walk(ctx, accountID, f, func(e domain.Entry) {
		entries = append(entries, e)
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Summarize aggregates the journal range by scanning it page by page.
func (s *Service) Summarize(ctx context.Context, accountID string, f domain.SummaryFilter) (domain.Summary, error) {
	var sum domain.Summary

	hf := domain.HistoryFilter{
		Since: f.Since,
		Until: f.Until,
		Kinds: f.Kinds,
		Limit: domain.MaxPageSize,
	}

	err := s.walk(ctx, accountID, hf, sum.Add)
	if err != nil {
		return domain.Summary{}, err
	}

	return sum, nil
}

func (s *Service) walk(ctx context.Context, accountID string, f domain.HistoryFilter, visit func(domain.Entry)) error {
	for {
		page, err := s.History(ctx, accountID, f)
		if err != nil {
			return err
		}

		for _, e := range page.Entries {
			visit(e)
		}

		if page.NextCursor == "" {
			return nil
		}

		f.Cursor = page.NextCursor
	}
}

// Entry returns a single journal entry.
func (s *Service) Entry(ctx context.Context, id string) (domain.Entry, error) {
	return s.store.GetEntry(ctx, id)
}
