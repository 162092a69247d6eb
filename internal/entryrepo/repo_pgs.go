// Package entryrepo manages repository layer of journal entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates entry repository layer logic.
//
// Entries are append only: the repository never updates or deletes a row.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns entry RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const entryColumns = `id, account_id, kind, amount, balance_after, sequence, status, idempotency_key, reference, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (domain.Entry, error) {
	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Kind,
		&e.Amount,
		&e.BalanceAfter,
		&e.Sequence,
		&e.Status,
		&e.IdempotencyKey,
		&e.Reference,
		&e.CreatedAt,
	)

	e.CreatedAt = e.CreatedAt.UTC()

	return e, err
}

const createQuery = `
INSERT INTO
    entries (` + entryColumns + `)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Create appends the entry to the journal and then returns it.
func (r *RepoPGS) Create(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	_, err := r.db.ExecContext(ctx, createQuery,
		e.ID,
		e.AccountID,
		e.Kind,
		e.Amount,
		e.BalanceAfter,
		e.Sequence,
		e.Status,
		e.IdempotencyKey,
		e.Reference,
		e.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Str("account_id", e.AccountID).Str("idempotency_key", e.IdempotencyKey).Send()

		if v, ok := dbpkg.ViolationOf(err); ok {
			switch {
			case v.Kind == dbpkg.UniqueViolation && v.Mentions("idempotency_key"):
				return domain.Entry{}, domain.ErrDuplicateIdempotencyKey
			case v.Kind == dbpkg.UniqueViolation && v.Mentions("sequence"):
				return domain.Entry{}, domain.ErrVersionConflict
			case v.Kind == dbpkg.ForeignKeyViolation:
				return domain.Entry{}, domain.ErrAccountNotFound
			}

			return domain.Entry{}, domain.ErrConstraintViolation
		}

		return domain.Entry{}, domain.StorageFailure(err)
	}

	return e, nil
}

const getQuery = `
SELECT ` + entryColumns + ` FROM entries
WHERE id = $1
`

// Get returns the entry with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Entry, error) {
	return r.getOne(ctx, getQuery, id)
}

const getByIdempotencyKeyQuery = `
SELECT ` + entryColumns + ` FROM entries
WHERE idempotency_key = $1
`

// GetByIdempotencyKey returns the entry created by the request with the given key.
func (r *RepoPGS) GetByIdempotencyKey(ctx context.Context, key string) (domain.Entry, error) {
	return r.getOne(ctx, getByIdempotencyKeyQuery, key)
}

func (r *RepoPGS) getOne(ctx context.Context, query, arg string) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, domain.ErrEntryNotFound
		}

		l.Error().Err(err).Str("arg", arg).Send()

		return domain.Entry{}, domain.StorageFailure(err)
	}

	return e, nil
}

// List returns the completed entries matching q ordered by sequence descending.
func (r *RepoPGS) List(ctx context.Context, q domain.EntryQuery) ([]domain.Entry, error) {
	query, args := buildListQuery(q)

	return r.list(ctx, query, args...)
}

func buildListQuery(q domain.EntryQuery) (string, []any) {
	var sb strings.Builder

	args := []any{q.AccountID, domain.EntryCompleted}

	sb.WriteString("SELECT " + entryColumns + " FROM entries\nWHERE account_id = $1 AND status = $2")

	add := func(cond string, arg any) {
		args = append(args, arg)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}

	if q.BeforeSequence > 0 {
		add("sequence < $%d", q.BeforeSequence)
	}

	if !q.Since.IsZero() {
		add("created_at >= $%d", q.Since.UTC())
	}

	if !q.Until.IsZero() {
		add("created_at < $%d", q.Until.UTC())
	}

	if len(q.Kinds) > 0 {
		placeholders := make([]string, len(q.Kinds))

		for i, k := range q.Kinds {
			args = append(args, k)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}

		sb.WriteString(" AND kind IN (" + strings.Join(placeholders, ", ") + ")")
	}

	sb.WriteString("\nORDER BY sequence DESC")

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, "\nLIMIT $%d", len(args))
	}

	return sb.String(), args
}

const replayQuery = `
SELECT ` + entryColumns + ` FROM entries
WHERE account_id = $1 AND status = $2
ORDER BY sequence
`

// Replay returns every completed entry of the account in commit order.
func (r *RepoPGS) Replay(ctx context.Context, accountID string) ([]domain.Entry, error) {
	return r.list(ctx, replayQuery, accountID, domain.EntryCompleted)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, domain.StorageFailure(err)
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, domain.StorageFailure(err)
		}

		items = append(items, e)
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
