// Package ledgerrepo combines the account and entry repositories into the
// ledger store used by the balance engine and the journal.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/trade-ledger/internal/accountrepo"
	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/entryrepo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store facilitates ledger repository layer logic.
type Store struct {
	conn     *sql.DB
	accounts *accountrepo.RepoPGS
	entries  *entryrepo.RepoPGS
}

// New returns Store with connection to start transactions.
func New(db *sql.DB) *Store {
	return &Store{
		conn:     db,
		accounts: accountrepo.NewRepoPGS(db),
		entries:  entryrepo.NewRepoPGS(db),
	}
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	return s.accounts.Get(ctx, id)
}

// GetAccountByOwner returns the owner's account in the given currency.
func (s *Store) GetAccountByOwner(ctx context.Context, owner, currency string) (domain.Account, error) {
	return s.accounts.GetByOwner(ctx, owner, currency)
}

// CreateAccount creates an empty active account.
func (s *Store) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	return s.accounts.Create(ctx, arg)
}

// ListAccounts returns every account of the owner.
func (s *Store) ListAccounts(ctx context.Context, owner string) ([]domain.Account, error) {
	return s.accounts.List(ctx, owner)
}

// SetAccountStatus changes the account status.
func (s *Store) SetAccountStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	return s.accounts.SetStatus(ctx, id, status)
}

// CloseAccount closes the account if it is still active at expectedVersion.
func (s *Store) CloseAccount(ctx context.Context, id string, expectedVersion int64) (domain.Account, error) {
	return s.accounts.Close(ctx, id, expectedVersion)
}

// GetEntry returns the entry with the given id.
func (s *Store) GetEntry(ctx context.Context, id string) (domain.Entry, error) {
	return s.entries.Get(ctx, id)
}

// FindByIdempotencyKey returns the entry created by the request with the given key.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (domain.Entry, error) {
	return s.entries.GetByIdempotencyKey(ctx, key)
}

// ReplayEntries returns every completed entry of the account in commit order.
func (s *Store) ReplayEntries(ctx context.Context, accountID string) ([]domain.Entry, error) {
	return s.entries.Replay(ctx, accountID)
}

// ListEntries returns one page of completed entries, newest first.
//
// NextCursor is set only when older entries matching the query remain.
func (s *Store) ListEntries(ctx context.Context, q domain.EntryQuery) (domain.EntryPage, error) {
	var page domain.EntryPage

	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}

	q.Limit = limit + 1

	entries, err := s.entries.List(ctx, q)
	if err != nil {
		return page, err
	}

	if len(entries) > limit {
		entries = entries[:limit]
		page.NextCursor = domain.EncodeCursor(entries[limit-1].Sequence)
	}

	page.Entries = entries

	return page, nil
}

// Commit atomically moves the account from expectedVersion to the next version
// holding newBalance and appends e to the journal as a completed entry.
//
// It returns domain.ErrVersionConflict when another commit won the race and
// domain.ErrDuplicateIdempotencyKey when the key was committed concurrently.
// Either way nothing is written.
func (s *Store) Commit(
	ctx context.Context,
	accountID string,
	expectedVersion int64,
	newBalance decimal.Decimal,
	e domain.Entry,
) (domain.Account, domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Entry{}, domain.StorageFailure(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	entryRepo := entryrepo.NewRepoPGS(tx)

	account, err := accountRepo.UpdateBalance(ctx, accountID, expectedVersion, newBalance, e.CreatedAt)
	if err != nil {
		return domain.Account{}, domain.Entry{}, err
	}

	e.AccountID = accountID
	e.BalanceAfter = account.Balance
	e.Sequence = account.Version
	e.Status = domain.EntryCompleted

	entry, err := entryRepo.Create(ctx, e)
	if err != nil {
		return domain.Account{}, domain.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Str("account_id", accountID).Send()
		return domain.Account{}, domain.Entry{}, domain.StorageFailure(err)
	}

	return account, entry, nil
}
