package journalservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/ledgerrepo"
	"github.com/go-petr/trade-ledger/internal/test"
	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/go-petr/trade-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestHistoryQuery(t *testing.T) {
	accountID := "account-1"
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	testCases := []struct {
		name       string
		filter     domain.HistoryFilter
		buildStubs func(store *MockStore)
		wantErr    error
	}{
		{
			name:   "Defaults",
			filter: domain.HistoryFilter{},
			buildStubs: func(store *MockStore) {
				store.EXPECT().
					ListEntries(gomock.Any(), domain.EntryQuery{AccountID: accountID, Limit: domain.DefaultPageSize}).
					Return(domain.EntryPage{}, nil)
			},
		},
		{
			name: "CursorAndClampedLimit",
			filter: domain.HistoryFilter{
				Since:  since,
				Until:  until,
				Kinds:  []domain.EntryKind{domain.KindFee},
				Cursor: domain.EncodeCursor(42),
				Limit:  1000,
			},
			buildStubs: func(store *MockStore) {
				store.EXPECT().
					ListEntries(gomock.Any(), domain.EntryQuery{
						AccountID:      accountID,
						Since:          since,
						Until:          until,
						Kinds:          []domain.EntryKind{domain.KindFee},
						BeforeSequence: 42,
						Limit:          domain.MaxPageSize,
					}).
					Return(domain.EntryPage{}, nil)
			},
		},
		{
			name:   "InvalidCursor",
			filter: domain.HistoryFilter{Cursor: "not-a-cursor"},
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidCursor,
		},
		{
			name:   "InvalidRange",
			filter: domain.HistoryFilter{Since: until, Until: since},
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidTimeRange,
		},
		{
			name:   "InvalidKind",
			filter: domain.HistoryFilter{Kinds: []domain.EntryKind{"BONUS"}},
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidKind,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			_, err := New(store).History(context.Background(), accountID, tc.filter)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.ErrorIs(t, err, domain.ErrInvalidInput)

				return
			}

			require.NoError(t, err)
		})
	}
}

func seedJournal(t *testing.T, n int) (*Service, domain.Account) {
	t.Helper()

	store := ledgerrepo.New(test.SetupDB(t))
	account := test.SeedAccount(t, store, randompkg.Owner(), currencypkg.USD, false)

	for i := 0; i < n; i++ {
		account, _ = test.SeedEntry(t, store, account, domain.KindDeposit, "10")
		account, _ = test.SeedEntry(t, store, account, domain.KindFee, "-1.5")
	}

	return New(store), account
}

func TestHistoryPagesAreStable(t *testing.T) {
	t.Parallel()

	s, account := seedJournal(t, 30)
	ctx := context.Background()

	seen := map[int64]bool{}
	last := int64(-1)
	f := domain.HistoryFilter{Limit: 7}

	for {
		page, err := s.History(ctx, account.ID, f)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Entries), 7)

		for _, e := range page.Entries {
			require.False(t, seen[e.Sequence])
			if last >= 0 {
				require.Less(t, e.Sequence, last)
			}

			seen[e.Sequence] = true
			last = e.Sequence
		}

		if page.NextCursor == "" {
			break
		}

		f.Cursor = page.NextCursor
	}

	require.Len(t, seen, 60)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s, account := seedJournal(t, 120)
	ctx := context.Background()

	sum, err := s.Summarize(ctx, account.ID, domain.SummaryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(240), sum.Count)
	require.True(t, sum.TotalCredits.Equal(decimal.NewFromInt(1200)))
	require.True(t, sum.TotalDebits.Equal(decimal.NewFromInt(-180)))
	require.True(t, sum.NetChange.Equal(decimal.NewFromInt(1020)))

	fees, err := s.Summarize(ctx, account.ID, domain.SummaryFilter{Kinds: []domain.EntryKind{domain.KindFee}})
	require.NoError(t, err)
	require.Equal(t, int64(120), fees.Count)
	require.True(t, fees.TotalCredits.IsZero())
	require.True(t, fees.NetChange.Equal(decimal.NewFromInt(-180)))

	entries, err := s.Entries(ctx, account.ID, domain.HistoryFilter{Kinds: []domain.EntryKind{domain.KindDeposit}})
	require.NoError(t, err)
	require.Len(t, entries, 120)

	got, err := s.Entry(ctx, entries[0].ID)
	require.NoError(t, err)
	require.Equal(t, entries[0].Sequence, got.Sequence)

	future, err := s.Summarize(ctx, account.ID, domain.SummaryFilter{Since: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	require.Zero(t, future.Count)
}
