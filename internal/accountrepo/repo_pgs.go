// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/pkg/dbpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
//
// The queries are portable between postgres and sqlite3.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Currency,
		&a.Balance,
		&a.Version,
		&a.AllowNegative,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (id, owner, currency, balance, version, allow_negative, status, created_at, updated_at)
VALUES
    ($1, $2, $3, $4, 0, $5, $6, $7, $7)
`

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	now := time.Now().UTC().Truncate(time.Microsecond)

	a := domain.Account{
		ID:            uuid.NewString(),
		Owner:         arg.Owner,
		Currency:      arg.Currency,
		Balance:       decimal.Zero,
		AllowNegative: arg.AllowNegative,
		Status:        domain.AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := r.db.ExecContext(ctx, createQuery,
		a.ID,
		a.Owner,
		a.Currency,
		a.Balance,
		a.AllowNegative,
		a.Status,
		now,
	)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if v, ok := dbpkg.ViolationOf(err); ok && v.Kind == dbpkg.UniqueViolation {
			return domain.Account{}, domain.ErrAccountAlreadyExists
		}

		return domain.Account{}, domain.StorageFailure(err)
	}

	return a, nil
}

const getQuery = `
SELECT
    id, owner, currency, balance, version, allow_negative, status, created_at, updated_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Str("account_id", id).Send()

		return a, domain.StorageFailure(err)
	}

	return a, nil
}

const getByOwnerQuery = `
SELECT
    id, owner, currency, balance, version, allow_negative, status, created_at, updated_at
FROM accounts
WHERE owner = $1 AND currency = $2
`

// GetByOwner returns the owner's account in the given currency.
func (r *RepoPGS) GetByOwner(ctx context.Context, owner, currency string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByOwnerQuery, owner, currency))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Str("owner", owner).Str("currency", currency).Send()

		return a, domain.StorageFailure(err)
	}

	return a, nil
}

const listQuery = `
SELECT
    id, owner, currency, balance, version, allow_negative, status, created_at, updated_at
FROM accounts
WHERE owner = $1
ORDER BY currency
`

// List returns all accounts of the owner ordered by currency.
func (r *RepoPGS) List(ctx context.Context, owner string) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, domain.StorageFailure(err)
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, domain.StorageFailure(err)
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, domain.StorageFailure(err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, domain.StorageFailure(err)
	}

	return items, nil
}

const setStatusQuery = `
UPDATE accounts
SET status = $1, updated_at = $2
WHERE id = $3
`

// SetStatus changes the account status without touching its version.
func (r *RepoPGS) SetStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	now := time.Now().UTC().Truncate(time.Microsecond)

	res, err := r.db.ExecContext(ctx, setStatusQuery, status, now, id)
	if err != nil {
		l.Error().Err(err).Str("account_id", id).Send()

		if _, ok := dbpkg.ViolationOf(err); ok {
			return domain.Account{}, domain.ErrConstraintViolation
		}

		return domain.Account{}, domain.StorageFailure(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.StorageFailure(err)
	}

	if n == 0 {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.Get(ctx, id)
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1, version = version + 1, updated_at = $2
WHERE id = $3 AND version = $4 AND status = $5
`

// UpdateBalance sets the balance of an active account if its version still
// equals expectedVersion and increments the version.
//
// A stale version, or an account that left the active state, yields
// domain.ErrVersionConflict.
func (r *RepoPGS) UpdateBalance(
	ctx context.Context,
	id string,
	expectedVersion int64,
	balance decimal.Decimal,
	updatedAt time.Time,
) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, updateBalanceQuery, balance, updatedAt, id, expectedVersion, domain.AccountActive)
	if err != nil {
		l.Error().Err(err).Str("account_id", id).Int64("expected_version", expectedVersion).Send()

		if v, ok := dbpkg.ViolationOf(err); ok {
			if v.Kind == dbpkg.CheckViolation && v.Mentions("accounts_balance_check") {
				return domain.Account{}, domain.ErrInsufficientFunds
			}

			return domain.Account{}, domain.ErrConstraintViolation
		}

		return domain.Account{}, domain.StorageFailure(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.StorageFailure(err)
	}

	if n == 0 {
		return domain.Account{}, domain.ErrVersionConflict
	}

	return r.Get(ctx, id)
}

const closeQuery = `
UPDATE accounts
SET status = $1, updated_at = $2
WHERE id = $3 AND version = $4 AND status = $5
`

// Close marks an active account closed if its version still equals
// expectedVersion, so no entry can slip in between the caller's balance check
// and the closure.
func (r *RepoPGS) Close(ctx context.Context, id string, expectedVersion int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	now := time.Now().UTC().Truncate(time.Microsecond)

	res, err := r.db.ExecContext(ctx, closeQuery, domain.AccountClosed, now, id, expectedVersion, domain.AccountActive)
	if err != nil {
		l.Error().Err(err).Str("account_id", id).Send()
		return domain.Account{}, domain.StorageFailure(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.StorageFailure(err)
	}

	if n == 0 {
		return domain.Account{}, domain.ErrVersionConflict
	}

	return r.Get(ctx, id)
}
