package accountrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-petr/trade-ledger/internal/accountrepo"
	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/test"
	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/go-petr/trade-ledger/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createRandomAccount(t *testing.T, repo *accountrepo.RepoPGS, owner, currency string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{Owner: owner, Currency: currency}

	account, err := repo.Create(context.Background(), arg)
	require.NoError(t, err)

	require.NotEmpty(t, account.ID)
	require.Equal(t, owner, account.Owner)
	require.Equal(t, currency, account.Currency)
	require.True(t, account.Balance.IsZero())
	require.Zero(t, account.Version)
	require.Equal(t, domain.AccountActive, account.Status)
	require.NotZero(t, account.CreatedAt)

	return account
}

func TestCreateGet(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	ctx := context.Background()
	owner := randompkg.Owner()

	want := createRandomAccount(t, repo, owner, currencypkg.USD)

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)

	equateDecimal := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	delta := cmpopts.EquateApproxTime(time.Millisecond)

	if diff := cmp.Diff(want, got, equateDecimal, delta); diff != "" {
		t.Errorf("repo.Get(ctx, %v) returned unexpected diff: %v", want.ID, diff)
	}

	got, err = repo.GetByOwner(ctx, owner, currencypkg.USD)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)

	_, err = repo.GetByOwner(ctx, owner, currencypkg.EUR)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.Create(ctx, domain.CreateAccountParams{Owner: owner, Currency: currencypkg.USD})
	require.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestList(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	owner := randompkg.Owner()

	createRandomAccount(t, repo, owner, currencypkg.USD)
	createRandomAccount(t, repo, owner, currencypkg.BTC)
	createRandomAccount(t, repo, randompkg.Owner(), currencypkg.EUR)

	accounts, err := repo.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, currencypkg.BTC, accounts[0].Currency)
	require.Equal(t, currencypkg.USD, accounts[1].Currency)

	accounts, err = repo.List(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestUpdateBalance(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	account := createRandomAccount(t, repo, randompkg.Owner(), currencypkg.USD)

	updated, err := repo.UpdateBalance(ctx, account.ID, 0, decimal.RequireFromString("100.25"), now)
	require.NoError(t, err)
	require.Equal(t, "100.25", updated.Balance.String())
	require.Equal(t, int64(1), updated.Version)

	_, err = repo.UpdateBalance(ctx, account.ID, 0, decimal.RequireFromString("50"), now)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	_, err = repo.UpdateBalance(ctx, account.ID, 1, decimal.RequireFromString("-0.01"), now)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := repo.Get(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, "100.25", got.Balance.String())
	require.Equal(t, int64(1), got.Version)

	_, err = repo.SetStatus(ctx, account.ID, domain.AccountFrozen)
	require.NoError(t, err)

	_, err = repo.UpdateBalance(ctx, account.ID, 1, decimal.RequireFromString("1"), now)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestUpdateBalanceAllowNegative(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	ctx := context.Background()

	arg := domain.CreateAccountParams{Owner: randompkg.Owner(), Currency: currencypkg.USDT, AllowNegative: true}

	account, err := repo.Create(ctx, arg)
	require.NoError(t, err)
	require.True(t, account.AllowNegative)

	updated, err := repo.UpdateBalance(ctx, account.ID, 0, decimal.RequireFromString("-12.5"), time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, "-12.5", updated.Balance.String())
	require.True(t, updated.AllowNegative)
}

func TestSetStatus(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	ctx := context.Background()

	account := createRandomAccount(t, repo, randompkg.Owner(), currencypkg.ETH)

	closed, err := repo.SetStatus(ctx, account.ID, domain.AccountClosed)
	require.NoError(t, err)
	require.Equal(t, domain.AccountClosed, closed.Status)
	require.Equal(t, account.Version, closed.Version)

	_, err = repo.SetStatus(ctx, "missing", domain.AccountClosed)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestClose(t *testing.T) {
	t.Parallel()

	repo := accountrepo.NewRepoPGS(test.SetupDB(t))
	ctx := context.Background()

	account := createRandomAccount(t, repo, randompkg.Owner(), currencypkg.USD)

	_, err := repo.Close(ctx, account.ID, account.Version+1)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	closed, err := repo.Close(ctx, account.ID, account.Version)
	require.NoError(t, err)
	require.Equal(t, domain.AccountClosed, closed.Status)

	_, err = repo.Close(ctx, account.ID, account.Version)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestFailureMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		dbErr     error
		wantErr   error
		callStore func(repo *accountrepo.RepoPGS) error
	}{
		{
			name:    "UpdateBalanceCheckViolation",
			dbErr:   &pq.Error{Code: "23514", Constraint: "accounts_balance_check"},
			wantErr: domain.ErrInsufficientFunds,
			callStore: func(repo *accountrepo.RepoPGS) error {
				_, err := repo.UpdateBalance(context.Background(), "id", 1, decimal.NewFromInt(-1), time.Now())
				return err
			},
		},
		{
			name:    "UpdateBalanceOtherConstraint",
			dbErr:   &pq.Error{Code: "23514", Constraint: "accounts_status_check"},
			wantErr: domain.ErrConstraintViolation,
			callStore: func(repo *accountrepo.RepoPGS) error {
				_, err := repo.UpdateBalance(context.Background(), "id", 1, decimal.NewFromInt(1), time.Now())
				return err
			},
		},
		{
			name:    "UpdateBalanceConnectionLost",
			dbErr:   errors.New("driver: bad connection"),
			wantErr: domain.ErrStorageUnavailable,
			callStore: func(repo *accountrepo.RepoPGS) error {
				_, err := repo.UpdateBalance(context.Background(), "id", 1, decimal.NewFromInt(1), time.Now())
				return err
			},
		},
		{
			name:    "CreateUniqueViolation",
			dbErr:   &pq.Error{Code: "23505", Constraint: "accounts_owner_currency_key"},
			wantErr: domain.ErrAccountAlreadyExists,
			callStore: func(repo *accountrepo.RepoPGS) error {
				_, err := repo.Create(context.Background(), domain.CreateAccountParams{Owner: "o", Currency: "USD"})
				return err
			},
		},
		{
			name:    "CreateCanceled",
			dbErr:   context.Canceled,
			wantErr: context.Canceled,
			callStore: func(repo *accountrepo.RepoPGS) error {
				_, err := repo.Create(context.Background(), domain.CreateAccountParams{Owner: "o", Currency: "USD"})
				return err
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec("accounts").WillReturnError(tc.dbErr)

			err = tc.callStore(accountrepo.NewRepoPGS(db))
			require.ErrorIs(t, err, tc.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
