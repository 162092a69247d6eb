// Package balanceservice manages the balance engine. It applies signed amounts
// to accounts under optimistic concurrency and reconciles stored balances
// against the journal.
package balanceservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store provides data access layer interface needed by the balance engine.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type Store interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error)
	Commit(
		ctx context.Context,
		accountID string,
		expectedVersion int64,
		newBalance decimal.Decimal,
		e domain.Entry,
	) (domain.Account, domain.Entry, error)
	FindByIdempotencyKey(ctx context.Context, key string) (domain.Entry, error)
	ReplayEntries(ctx context.Context, accountID string) ([]domain.Entry, error)
}

// Publisher receives committed entries and reconciliation alerts.
type Publisher interface {
	PublishEntry(ctx context.Context, e domain.Entry) error
	PublishAlert(ctx context.Context, report domain.ReconcileReport) error
}

// Config holds the retry policy for lost version races.
type Config struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// DefaultConfig returns the default retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BackoffBase: 2 * time.Millisecond,
		BackoffMax:  100 * time.Millisecond,
	}
}

// Service facilitates balance engine logic.
//
// It keeps no per-account locks: the version compare-and-swap performed by
// Store.Commit is the only protection against concurrent writers.
type Service struct {
	store Store
	feed  Publisher
	cfg   Config
	now   func() time.Time
}

// New returns the balance engine. feed may be nil.
func New(store Store, feed Publisher, cfg Config) *Service {
	def := DefaultConfig()

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}

	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = def.BackoffMax
	}

	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = cfg.BackoffBase
	}

	return &Service{
		store: store,
		feed:  feed,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func validate(arg domain.ApplyParams) error {
	if arg.AccountID == "" {
		return domain.ErrAccountNotFound
	}

	if err := arg.CheckAmount(); err != nil {
		return err
	}

	if err := domain.CheckIdempotencyKey(arg.IdempotencyKey); err != nil {
		return err
	}

	return domain.CheckReference(arg.Reference)
}

// Apply appends an entry of arg.Kind and arg.Amount to the account journal and
// moves the balance accordingly, atomically.
//
// A request repeating an already committed idempotency key with the same
// payload returns the original result without writing anything. Lost version
// races are retried with exponential backoff until Config.MaxAttempts is
// reached, after which domain.ErrContentionExceeded is returned.
func (s *Service) Apply(ctx context.Context, arg domain.ApplyParams) (domain.AppliedResult, error) {
	l := zerolog.Ctx(ctx).With().
		Str("account_id", arg.AccountID).
		Str("idempotency_key", arg.IdempotencyKey).
		Logger()

	if err := validate(arg); err != nil {
		return domain.AppliedResult{}, err
	}

	for attempt := 1; ; attempt++ {
		res, found, err := s.replay(ctx, arg)
		if err != nil || found {
			return res, err
		}

		res, err = s.tryApply(ctx, arg)

		switch {
		case err == nil:
			s.publishEntry(ctx, res.Entry)
			return res, nil

		case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
			l.Debug().Msg("idempotency key committed concurrently")

			res, found, err = s.replay(ctx, arg)
			if err != nil || found {
				return res, err
			}

			return domain.AppliedResult{}, domain.ErrStorageUnavailable

		case !errors.Is(err, domain.ErrVersionConflict):
			return domain.AppliedResult{}, err
		}

		if attempt >= s.cfg.MaxAttempts {
			l.Warn().Int("attempts", attempt).Msg("version conflict retries exhausted")
			return domain.AppliedResult{}, domain.ErrContentionExceeded
		}

		delay := s.backoff(attempt)

		l.Debug().Int("attempt", attempt).Dur("backoff", delay).Msg("version conflict, retrying")

		if err := sleep(ctx, delay); err != nil {
			return domain.AppliedResult{}, err
		}
	}
}

// replay returns the result of an already committed request with the same key.
func (s *Service) replay(ctx context.Context, arg domain.ApplyParams) (domain.AppliedResult, bool, error) {
	e, err := s.store.FindByIdempotencyKey(ctx, arg.IdempotencyKey)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return domain.AppliedResult{}, false, nil
		}

		return domain.AppliedResult{}, false, err
	}

	if !e.SamePayload(arg.AccountID, arg.Kind, arg.Amount) {
		return domain.AppliedResult{}, false, domain.ErrIdempotencyKeyReused
	}

	if e.Status != domain.EntryCompleted {
		return domain.AppliedResult{}, false, domain.ErrIdempotencyKeyNotCompleted
	}

	return domain.AppliedResult{Entry: e, Balance: e.BalanceAfter}, true, nil
}

func (s *Service) tryApply(ctx context.Context, arg domain.ApplyParams) (domain.AppliedResult, error) {
	account, err := s.store.GetAccount(ctx, arg.AccountID)
	if err != nil {
		return domain.AppliedResult{}, err
	}

	if err := account.CheckWritable(); err != nil {
		return domain.AppliedResult{}, err
	}

	newBalance := account.Balance.Add(arg.Amount)
	if !account.CanHold(newBalance) {
		return domain.AppliedResult{}, domain.ErrInsufficientFunds
	}

	pending := domain.Entry{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		Kind:           arg.Kind,
		Amount:         arg.Amount,
		BalanceAfter:   newBalance,
		Sequence:       account.Version + 1,
		Status:         domain.EntryPending,
		IdempotencyKey: arg.IdempotencyKey,
		Reference:      arg.Reference,
		CreatedAt:      s.now(),
	}

	updated, entry, err := s.store.Commit(ctx, account.ID, account.Version, newBalance, pending)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVersionConflict),
			errors.Is(err, domain.ErrDuplicateIdempotencyKey),
			errors.Is(err, domain.ErrInsufficientFunds),
			errors.Is(err, domain.ErrNotFound),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return domain.AppliedResult{}, err
		}

		return domain.AppliedResult{}, domain.ErrStorageUnavailable
	}

	return domain.AppliedResult{Entry: entry, Balance: updated.Balance}, nil
}

// backoff returns the delay before the next attempt, doubling from BackoffBase
// and capped by BackoffMax.
func (s *Service) backoff(attempt int) time.Duration {
	d := s.cfg.BackoffBase

	for i := 1; i < attempt && d < s.cfg.BackoffMax; i++ {
		d *= 2
	}

	if d > s.cfg.BackoffMax {
		d = s.cfg.BackoffMax
	}

	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) publishEntry(ctx context.Context, e domain.Entry) {
	if s.feed == nil {
		return
	}

	if err := s.feed.PublishEntry(ctx, e); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("entry_id", e.ID).Msg("entry not published")
	}
}

// Reconcile replays the account journal in commit order and compares every
// balance_after and sequence, and finally the stored balance and version, with
// the replayed values.
//
// Any mismatch freezes the account, raises an alert and returns the report
// together with domain.ErrInvariantViolation. Stored data is never corrected.
func (s *Service) Reconcile(ctx context.Context, accountID string) (domain.ReconcileReport, error) {
	l := zerolog.Ctx(ctx).With().Str("account_id", accountID).Logger()

	account, entries, err := s.snapshot(ctx, accountID)
	if err != nil {
		return domain.ReconcileReport{}, err
	}

	report := check(account, entries)
	if report.Consistent() {
		l.Debug().Int64("entries", report.EntryCount).Msg("account reconciled")
		return report, nil
	}

	l.Error().
		Str("stored_balance", report.StoredBalance.String()).
		Str("replayed_balance", report.ReplayedBalance.String()).
		Int64("stored_version", report.StoredVersion).
		Int64("entries", report.EntryCount).
		Interface("discrepancies", report.Discrepancies).
		Msg("ledger invariant violated")

	if account.Status != domain.AccountFrozen {
		if _, err := s.store.SetAccountStatus(ctx, accountID, domain.AccountFrozen); err != nil {
			l.Error().Err(err).Msg("account not frozen")
			return report, err
		}
	}

	if s.feed != nil {
		if err := s.feed.PublishAlert(ctx, report); err != nil {
			l.Warn().Err(err).Msg("reconciliation alert not published")
		}
	}

	return report, fmt.Errorf("account %s: %w", accountID, domain.ErrInvariantViolation)
}

// snapshot reads the account and its journal at one version, retrying while
// concurrent commits move the version between the two reads.
func (s *Service) snapshot(ctx context.Context, accountID string) (domain.Account, []domain.Entry, error) {
	for attempt := 1; ; attempt++ {
		before, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return domain.Account{}, nil, err
		}

		entries, err := s.store.ReplayEntries(ctx, accountID)
		if err != nil {
			return domain.Account{}, nil, err
		}

		after, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return domain.Account{}, nil, err
		}

		if before.Version == after.Version {
			return after, entries, nil
		}

		if attempt >= s.cfg.MaxAttempts {
			return domain.Account{}, nil, domain.ErrContentionExceeded
		}

		if err := sleep(ctx, s.backoff(attempt)); err != nil {
			return domain.Account{}, nil, err
		}
	}
}

func check(account domain.Account, entries []domain.Entry) domain.ReconcileReport {
	report := domain.ReconcileReport{
		AccountID:     account.ID,
		StoredBalance: account.Balance,
		StoredVersion: account.Version,
		EntryCount:    int64(len(entries)),
	}

	running := decimal.Zero

	for i, e := range entries {
		if want := int64(i + 1); e.Sequence != want {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				EntryID:  e.ID,
				Sequence: e.Sequence,
				Field:    "sequence",
				Want:     fmt.Sprint(want),
				Got:      fmt.Sprint(e.Sequence),
			})
		}

		running = running.Add(e.Amount)

		if !e.BalanceAfter.Equal(running) {
			report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
				EntryID:  e.ID,
				Sequence: e.Sequence,
				Field:    "balance_after",
				Want:     running.String(),
				Got:      e.BalanceAfter.String(),
			})
		}
	}

	report.ReplayedBalance = running

	if !running.Equal(account.Balance) {
		report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
			Sequence: account.Version,
			Field:    "balance",
			Want:     running.String(),
			Got:      account.Balance.String(),
		})
	}

	if report.EntryCount != account.Version {
		report.Discrepancies = append(report.Discrepancies, domain.Discrepancy{
			Sequence: account.Version,
			Field:    "version",
			Want:     fmt.Sprint(report.EntryCount),
			Got:      fmt.Sprint(account.Version),
		})
	}

	return report
}
