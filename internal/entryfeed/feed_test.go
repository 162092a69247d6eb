package entryfeed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/test"
	"github.com/go-petr/trade-ledger/pkg/randompkg"
	"github.com/go-redis/redismock/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPublishEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	feed := New(rdb, "ledger:entries")

	account := test.RandomAccount(randompkg.Owner())
	e := test.CompletedEntry(account, domain.KindDeposit, decimal.RequireFromString("12.34"))

	data, err := json.Marshal(Event{Type: EventEntryCommitted, Entry: &e})
	require.NoError(t, err)

	mock.ExpectRPush("ledger:entries", data).SetVal(1)
	require.NoError(t, feed.PublishEntry(context.Background(), e))

	mock.ExpectRPush("ledger:entries", data).SetErr(errors.New("connection refused"))
	require.Error(t, feed.PublishEntry(context.Background(), e))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishAlert(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	feed := New(rdb, "ledger:entries")

	report := domain.ReconcileReport{
		AccountID:       "account-1",
		StoredBalance:   decimal.RequireFromString("400"),
		ReplayedBalance: decimal.RequireFromString("40"),
		StoredVersion:   1,
		EntryCount:      1,
		Discrepancies: []domain.Discrepancy{
			{Sequence: 1, Field: "balance", Want: "40", Got: "400"},
		},
	}

	data, err := json.Marshal(Event{Type: EventInvariantViolated, Report: &report})
	require.NoError(t, err)

	mock.ExpectRPush("ledger:entries:alerts", data).SetVal(1)
	require.NoError(t, feed.PublishAlert(context.Background(), report))

	require.NoError(t, mock.ExpectationsWereMet())

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, EventInvariantViolated, got.Type)
	require.Nil(t, got.Entry)
	require.Equal(t, "400", got.Report.StoredBalance.String())
}
