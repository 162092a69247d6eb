package test

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/ledgerrepo"
	"github.com/go-petr/trade-ledger/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedAccount creates an empty active account.
func SeedAccount(t *testing.T, store *ledgerrepo.Store, owner, currency string, allowNegative bool) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		Owner:         owner,
		Currency:      currency,
		AllowNegative: allowNegative,
	}

	account, err := store.CreateAccount(context.Background(), arg)
	if err != nil {
		t.Fatalf("store.CreateAccount(ctx, %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedEntry commits an entry of the given kind and amount on top of the account.
// It returns the updated account and the committed entry.
func SeedEntry(
	t *testing.T,
	store *ledgerrepo.Store,
	account domain.Account,
	kind domain.EntryKind,
	amount string,
) (domain.Account, domain.Entry) {
	t.Helper()

	a := decimal.RequireFromString(amount)
	e := NewEntry(account.ID, kind, a)

	account, entry, err := store.Commit(context.Background(), account.ID, account.Version, account.Balance.Add(a), e)
	if err != nil {
		t.Fatalf("store.Commit(ctx, %v, %v, %v) returned error: %v", account.ID, kind, amount, err)
	}

	return account, entry
}

// NewEntry builds a pending entry with a fresh id and idempotency key.
func NewEntry(accountID string, kind domain.EntryKind, amount decimal.Decimal) domain.Entry {
	return domain.Entry{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Kind:           kind,
		Amount:         amount,
		Status:         domain.EntryPending,
		IdempotencyKey: randompkg.IdempotencyKey(),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// RandomAccount returns a random active account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	now := time.Now().UTC().Truncate(time.Second)

	return domain.Account{
		ID:        uuid.NewString(),
		Owner:     owner,
		Currency:  randompkg.Currency(),
		Balance:   randompkg.Amount(1_000, 10_000, 2),
		Version:   randompkg.IntBetween(1, 100),
		Status:    domain.AccountActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CompletedEntry returns the completed entry an apply of amount on account would produce.
func CompletedEntry(account domain.Account, kind domain.EntryKind, amount decimal.Decimal) domain.Entry {
	e := NewEntry(account.ID, kind, amount)
	e.BalanceAfter = account.Balance.Add(amount)
	e.Sequence = account.Version + 1
	e.Status = domain.EntryCompleted

	return e
}
