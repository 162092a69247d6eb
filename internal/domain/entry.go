package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrEntryNotFound indicates that the entry is not found.
	ErrEntryNotFound = newError(ErrNotFound, "entry not found")
	// ErrInvalidAmount indicates an amount that is not a decimal number.
	ErrInvalidAmount = newError(ErrInvalidInput, "invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount where a positive one is required.
	ErrNonPositiveAmount = newError(ErrInvalidInput, "amount must be positive")
	// ErrZeroAmount indicates a zero signed amount.
	ErrZeroAmount = newError(ErrInvalidInput, "amount must not be zero")
	// ErrAmountSign indicates an amount whose sign does not match the entry kind.
	ErrAmountSign = newError(ErrInvalidInput, "amount sign does not match entry kind")
	// ErrAmountPrecision indicates an amount with more decimal places than the currency allows.
	ErrAmountPrecision = newError(ErrInvalidInput, "amount exceeds currency precision")
	// ErrInvalidKind indicates an unknown entry kind.
	ErrInvalidKind = newError(ErrInvalidInput, "invalid entry kind")
	// ErrIdempotencyKeyRequired indicates a mutation without an idempotency key.
	ErrIdempotencyKeyRequired = newError(ErrInvalidInput, "idempotency key is required")
	// ErrIdempotencyKeyTooLong indicates an idempotency key over MaxIdempotencyKeyLen.
	ErrIdempotencyKeyTooLong = newError(ErrInvalidInput, "idempotency key is too long")
	// ErrIdempotencyKeyReused indicates a key already used for a different operation.
	ErrIdempotencyKeyReused = newError(ErrInvalidInput, "idempotency key was used for a different operation")
	// ErrIdempotencyKeyNotCompleted indicates a key held by an entry that never completed.
	ErrIdempotencyKeyNotCompleted = newError(ErrInvalidInput, "idempotency key belongs to an entry that did not complete")
	// ErrDuplicateIdempotencyKey indicates that a concurrent commit already claimed the key.
	ErrDuplicateIdempotencyKey = newError(ErrConstraintViolation, "duplicate idempotency key")
	// ErrReferenceTooLong indicates a related reference over MaxReferenceLen.
	ErrReferenceTooLong = newError(ErrInvalidInput, "reference is too long")
	// ErrInvalidCursor indicates a malformed history cursor.
	ErrInvalidCursor = newError(ErrInvalidInput, "invalid cursor")
	// ErrInvalidTimeRange indicates since after until.
	ErrInvalidTimeRange = newError(ErrInvalidInput, "since must not be after until")
)

// ReversalPrefix prefixes the reference and idempotency key of a reversal entry.
const ReversalPrefix = "reversal:"

// Input limits.
const (
	MaxIdempotencyKeyLen = 128
	MaxReferenceLen      = 256
)

// EntryKind is the business reason of a balance change.
type EntryKind string

// Entry kinds.
const (
	KindDeposit       EntryKind = "DEPOSIT"
	KindWithdrawal    EntryKind = "WITHDRAWAL"
	KindTradeBuy      EntryKind = "TRADE_BUY"
	KindTradeSell     EntryKind = "TRADE_SELL"
	KindCopyTradePnl  EntryKind = "COPY_TRADE_PNL"
	KindCopyTradeFee  EntryKind = "COPY_TRADE_FEE"
	KindPnlAdjustment EntryKind = "PNL_ADJUSTMENT"
	KindFee           EntryKind = "FEE"
)

// EntryKinds lists every entry kind.
var EntryKinds = []EntryKind{
	KindDeposit,
	KindWithdrawal,
	KindTradeBuy,
	KindTradeSell,
	KindCopyTradePnl,
	KindCopyTradeFee,
	KindPnlAdjustment,
	KindFee,
}

// PnlKinds are the kinds that make up the profit and loss view of an account.
var PnlKinds = []EntryKind{
	KindTradeBuy,
	KindTradeSell,
	KindCopyTradePnl,
	KindCopyTradeFee,
	KindPnlAdjustment,
}

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	for _, kind := range EntryKinds {
		if kind == k {
			return true
		}
	}

	return false
}

// CheckAmount validates the sign of a signed amount against the kind.
func (k EntryKind) CheckAmount(amount decimal.Decimal) error {
	if !k.Valid() {
		return ErrInvalidKind
	}

	if amount.IsZero() {
		return ErrZeroAmount
	}

	switch k {
	case KindDeposit, KindTradeSell:
		if amount.IsNegative() {
			return ErrAmountSign
		}
	case KindWithdrawal, KindTradeBuy, KindFee, KindCopyTradeFee:
		if amount.IsPositive() {
			return ErrAmountSign
		}
	}

	return nil
}

// EntryStatus is the state of a journal entry.
type EntryStatus string

// Entry statuses. Only COMPLETED entries are ever persisted by the engine.
const (
	EntryPending   EntryStatus = "PENDING"
	EntryCompleted EntryStatus = "COMPLETED"
	EntryFailed    EntryStatus = "FAILED"
	EntryCancelled EntryStatus = "CANCELLED"
)

// Entry holds balance change data for an account.
type Entry struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Kind           EntryKind       `json:"kind"`
	Amount         decimal.Decimal `json:"amount"` // negative for debits
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	Sequence       int64           `json:"sequence"`
	Status         EntryStatus     `json:"status"`
	IdempotencyKey string          `json:"idempotency_key"`
	Reference      string          `json:"reference,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SamePayload reports whether the entry was produced by an identical request.
func (e Entry) SamePayload(accountID string, kind EntryKind, amount decimal.Decimal) bool {
	return e.AccountID == accountID && e.Kind == kind && e.Amount.Equal(amount)
}

// AppliedResult is the outcome of applying an entry to an account.
type AppliedResult struct {
	Entry   Entry           `json:"entry"`
	Balance decimal.Decimal `json:"balance"`
}

// ApplyParams is the input data to apply a balance change.
//
// A Reversal carries the opposite sign of what its kind normally requires.
type ApplyParams struct {
	AccountID      string
	Kind           EntryKind
	Amount         decimal.Decimal
	IdempotencyKey string
	Reference      string
	Reversal       bool
}

// CheckAmount validates the signed amount against the kind.
func (p ApplyParams) CheckAmount() error {
	if p.Reversal {
		return p.Kind.CheckAmount(p.Amount.Neg())
	}

	return p.Kind.CheckAmount(p.Amount)
}

// ChangeParams is the input data of an owner initiated balance change.
type ChangeParams struct {
	Owner          string
	Currency       string
	Amount         decimal.Decimal
	Reference      string
	IdempotencyKey string
}

// CheckIdempotencyKey validates a caller supplied idempotency key.
func CheckIdempotencyKey(key string) error {
	if key == "" {
		return ErrIdempotencyKeyRequired
	}

	if len(key) > MaxIdempotencyKeyLen {
		return ErrIdempotencyKeyTooLong
	}

	return nil
}

// CheckReference validates an optional related reference.
func CheckReference(ref string) error {
	if len(ref) > MaxReferenceLen {
		return ErrReferenceTooLong
	}

	return nil
}
