package balanceservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/test"
	"github.com/go-petr/trade-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	MaxAttempts: 3,
	BackoffBase: time.Microsecond,
	BackoffMax:  4 * time.Microsecond,
}

// commitOK returns a Commit stub that behaves like a successful store commit.
func commitOK(account domain.Account) func(context.Context, string, int64, decimal.Decimal, domain.Entry) (domain.Account, domain.Entry, error) {
	return func(_ context.Context, _ string, version int64, balance decimal.Decimal, e domain.Entry) (domain.Account, domain.Entry, error) {
		account.Version = version + 1
		account.Balance = balance
		e.Status = domain.EntryCompleted

		return account, e, nil
	}
}

func TestApply(t *testing.T) {
	account := test.RandomAccount(randompkg.Owner())
	account.Balance = decimal.RequireFromString("100")
	account.Version = 7

	key := randompkg.IdempotencyKey()

	deposit := domain.ApplyParams{
		AccountID:      account.ID,
		Kind:           domain.KindDeposit,
		Amount:         decimal.RequireFromString("25.50"),
		IdempotencyKey: key,
		Reference:      "bank-transfer-1",
	}

	withdrawal := deposit
	withdrawal.Kind = domain.KindWithdrawal
	withdrawal.Amount = decimal.RequireFromString("-100.01")

	committed := test.CompletedEntry(account, deposit.Kind, deposit.Amount)
	committed.IdempotencyKey = key

	testCases := []struct {
		name          string
		arg           domain.ApplyParams
		buildStubs    func(store *MockStore, feed *MockPublisher)
		checkResponse func(t *testing.T, res domain.AppliedResult, err error)
	}{
		{
			name: "OK",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
				store.EXPECT().
					Commit(gomock.Any(), account.ID, account.Version, gomock.Any(), gomock.Any()).
					DoAndReturn(commitOK(account))
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, "125.5", res.Balance.String())
				require.Equal(t, domain.EntryCompleted, res.Entry.Status)
				require.Equal(t, account.Version+1, res.Entry.Sequence)
				require.True(t, res.Entry.BalanceAfter.Equal(res.Balance))
				require.Equal(t, "bank-transfer-1", res.Entry.Reference)
				require.NotEmpty(t, res.Entry.ID)
			},
		},
		{
			name: "PublishFailureIgnored",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
				store.EXPECT().Commit(gomock.Any(), account.ID, account.Version, gomock.Any(), gomock.Any()).
					DoAndReturn(commitOK(account))
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, "125.5", res.Balance.String())
			},
		},
		{
			name: "IdempotentReplay",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(committed, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, committed, res.Entry)
				require.True(t, res.Balance.Equal(committed.BalanceAfter))
			},
		},
		{
			name: "IdempotencyKeyReused",
			arg: domain.ApplyParams{
				AccountID:      account.ID,
				Kind:           domain.KindDeposit,
				Amount:         decimal.RequireFromString("99"),
				IdempotencyKey: key,
			},
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(committed, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrIdempotencyKeyReused)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				require.Empty(t, res)
			},
		},
		{
			name: "KeyHeldByFailedEntry",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				failed := committed
				failed.Status = domain.EntryFailed

				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(failed, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrIdempotencyKeyNotCompleted)
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				require.Empty(t, res)
			},
		},
		{
			name: "InsufficientFunds",
			arg:  withdrawal,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			},
		},
		{
			name: "OverdraftAllowed",
			arg:  withdrawal,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				margin := account
				margin.AllowNegative = true

				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(margin, nil)
				store.EXPECT().Commit(gomock.Any(), account.ID, account.Version, gomock.Any(), gomock.Any()).
					DoAndReturn(commitOK(margin))
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, "-0.01", res.Balance.String())
			},
		},
		{
			name: "ClosedAccount",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				closed := account
				closed.Status = domain.AccountClosed

				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(closed, nil)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrAccountClosed)
			},
		},
		{
			name: "FrozenAccount",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				frozen := account
				frozen.Status = domain.AccountFrozen

				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(frozen, nil)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrAccountFrozen)
			},
		},
		{
			name: "AccountNotFound",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrNotFound)
			},
		},
		{
			name: "ConflictThenSuccess",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				moved := account
				moved.Version++
				moved.Balance = moved.Balance.Add(decimal.NewFromInt(1))

				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound).Times(2)
				gomock.InOrder(
					store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil),
					store.EXPECT().Commit(gomock.Any(), account.ID, account.Version, gomock.Any(), gomock.Any()).
						Return(domain.Account{}, domain.Entry{}, domain.ErrVersionConflict),
					store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(moved, nil),
					store.EXPECT().Commit(gomock.Any(), account.ID, moved.Version, gomock.Any(), gomock.Any()).
						DoAndReturn(commitOK(moved)),
				)
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, "126.5", res.Balance.String())
				require.Equal(t, account.Version+2, res.Entry.Sequence)
			},
		},
		{
			name: "ContentionExceeded",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).
					Return(domain.Entry{}, domain.ErrEntryNotFound).Times(testConfig.MaxAttempts)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).
					Return(account, nil).Times(testConfig.MaxAttempts)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(domain.Account{}, domain.Entry{}, domain.ErrVersionConflict).Times(testConfig.MaxAttempts)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrContentionExceeded)
				require.True(t, domain.IsRetryable(err))
			},
		},
		{
			name: "DuplicateKeyReturnsWinner",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				gomock.InOrder(
					store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound),
					store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(committed, nil),
				)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(domain.Account{}, domain.Entry{}, domain.ErrDuplicateIdempotencyKey)
				feed.EXPECT().PublishEntry(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.NoError(t, err)
				require.Equal(t, committed.ID, res.Entry.ID)
			},
		},
		{
			name: "StorageFailure",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrEntryNotFound)
				store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
				store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(domain.Account{}, domain.Entry{}, domain.ErrConstraintViolation)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrStorageUnavailable)
				require.True(t, domain.IsRetryable(err))
			},
		},
		{
			name: "LookupFailure",
			arg:  deposit,
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), key).Return(domain.Entry{}, domain.ErrStorageUnavailable)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrStorageUnavailable)
			},
		},
		{
			name: "SignMismatch",
			arg: domain.ApplyParams{
				AccountID:      account.ID,
				Kind:           domain.KindFee,
				Amount:         decimal.RequireFromString("1"),
				IdempotencyKey: key,
			},
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrAmountSign)
			},
		},
		{
			name: "MissingKey",
			arg: domain.ApplyParams{
				AccountID: account.ID,
				Kind:      domain.KindDeposit,
				Amount:    decimal.RequireFromString("1"),
			},
			buildStubs: func(store *MockStore, feed *MockPublisher) {
				store.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.AppliedResult, err error) {
				require.ErrorIs(t, err, domain.ErrIdempotencyKeyRequired)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			feed := NewMockPublisher(ctrl)
			tc.buildStubs(store, feed)

			s := New(store, feed, testConfig)

			res, err := s.Apply(context.Background(), tc.arg)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestApplyCanceledDuringBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	account := test.RandomAccount(randompkg.Owner())

	ctx, cancel := context.WithCancel(context.Background())

	store := NewMockStore(ctrl)
	store.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any()).Return(domain.Entry{}, domain.ErrEntryNotFound)
	store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil)
	store.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, int64, decimal.Decimal, domain.Entry) (domain.Account, domain.Entry, error) {
			cancel()
			return domain.Account{}, domain.Entry{}, domain.ErrVersionConflict
		})

	s := New(store, nil, Config{MaxAttempts: 5, BackoffBase: time.Hour, BackoffMax: time.Hour})

	_, err := s.Apply(ctx, domain.ApplyParams{
		AccountID:      account.ID,
		Kind:           domain.KindDeposit,
		Amount:         decimal.NewFromInt(1),
		IdempotencyKey: randompkg.IdempotencyKey(),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	s := New(nil, nil, Config{MaxAttempts: 10, BackoffBase: 2 * time.Millisecond, BackoffMax: 10 * time.Millisecond})

	got := make([]time.Duration, 0, 5)
	for attempt := 1; attempt <= 5; attempt++ {
		got = append(got, s.backoff(attempt))
	}

	want := []time.Duration{
		2 * time.Millisecond,
		4 * time.Millisecond,
		8 * time.Millisecond,
		10 * time.Millisecond,
		10 * time.Millisecond,
	}
	require.Equal(t, want, got)

	def := New(nil, nil, Config{})
	require.Equal(t, DefaultConfig(), def.cfg)
}

func TestReconcile(t *testing.T) {
	account := test.RandomAccount(randompkg.Owner())
	account.Version = 2
	account.Balance = decimal.RequireFromString("7.5")

	e1 := test.NewEntry(account.ID, domain.KindDeposit, decimal.RequireFromString("10"))
	e1.Sequence, e1.BalanceAfter, e1.Status = 1, decimal.RequireFromString("10"), domain.EntryCompleted

	e2 := test.NewEntry(account.ID, domain.KindFee, decimal.RequireFromString("-2.5"))
	e2.Sequence, e2.BalanceAfter, e2.Status = 2, decimal.RequireFromString("7.5"), domain.EntryCompleted

	t.Run("Consistent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := NewMockStore(ctrl)
		feed := NewMockPublisher(ctrl)

		store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil).Times(2)
		store.EXPECT().ReplayEntries(gomock.Any(), account.ID).Return([]domain.Entry{e1, e2}, nil)
		store.EXPECT().SetAccountStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		feed.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).Times(0)

		report, err := New(store, feed, testConfig).Reconcile(context.Background(), account.ID)
		require.NoError(t, err)
		require.True(t, report.Consistent())
		require.Equal(t, int64(2), report.EntryCount)
		require.True(t, report.ReplayedBalance.Equal(account.Balance))
	})

	t.Run("TamperedBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		tampered := account
		tampered.Balance = decimal.RequireFromString("1000")

		store := NewMockStore(ctrl)
		feed := NewMockPublisher(ctrl)

		store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(tampered, nil).Times(2)
		store.EXPECT().ReplayEntries(gomock.Any(), account.ID).Return([]domain.Entry{e1, e2}, nil)
		store.EXPECT().SetAccountStatus(gomock.Any(), account.ID, domain.AccountFrozen).Return(tampered, nil)
		feed.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).Return(nil)

		report, err := New(store, feed, testConfig).Reconcile(context.Background(), account.ID)
		require.ErrorIs(t, err, domain.ErrInvariantViolation)
		require.Len(t, report.Discrepancies, 1)
		require.Equal(t, "balance", report.Discrepancies[0].Field)
		require.Equal(t, "7.5", report.Discrepancies[0].Want)
		require.Equal(t, "1000", report.Discrepancies[0].Got)
	})

	t.Run("BrokenChain", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		broken := e2
		broken.BalanceAfter = decimal.RequireFromString("8")
		broken.Sequence = 3

		store := NewMockStore(ctrl)

		store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil).Times(2)
		store.EXPECT().ReplayEntries(gomock.Any(), account.ID).Return([]domain.Entry{e1, broken}, nil)
		store.EXPECT().SetAccountStatus(gomock.Any(), account.ID, domain.AccountFrozen).Return(account, nil)

		report, err := New(store, nil, testConfig).Reconcile(context.Background(), account.ID)
		require.ErrorIs(t, err, domain.ErrInvariantViolation)

		fields := make([]string, 0, len(report.Discrepancies))
		for _, d := range report.Discrepancies {
			fields = append(fields, d.Field)
		}

		require.Equal(t, []string{"sequence", "balance_after"}, fields)
	})

	t.Run("MovingVersion", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		moved := account
		moved.Version++

		store := NewMockStore(ctrl)

		gomock.InOrder(
			store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil),
			store.EXPECT().ReplayEntries(gomock.Any(), account.ID).Return([]domain.Entry{e1, e2}, nil),
			store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(moved, nil),
			store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil),
			store.EXPECT().ReplayEntries(gomock.Any(), account.ID).Return([]domain.Entry{e1, e2}, nil),
			store.EXPECT().GetAccount(gomock.Any(), account.ID).Return(account, nil),
		)

		report, err := New(store, nil, testConfig).Reconcile(context.Background(), account.ID)
		require.NoError(t, err)
		require.True(t, report.Consistent())
	})
}
