// Package accountservice manages business logic layer of accounts. It is the
// façade that translates owner intents into balance engine and journal calls.
package accountservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Store interface {
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	GetAccountByOwner(ctx context.Context, owner, currency string) (domain.Account, error)
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	ListAccounts(ctx context.Context, owner string) ([]domain.Account, error)
	CloseAccount(ctx context.Context, id string, expectedVersion int64) (domain.Account, error)
}

// Engine applies balance changes and reconciles accounts.
type Engine interface {
	Apply(ctx context.Context, arg domain.ApplyParams) (domain.AppliedResult, error)
	Reconcile(ctx context.Context, accountID string) (domain.ReconcileReport, error)
}

// Journal serves the account history.
type Journal interface {
	History(ctx context.Context, accountID string, f domain.HistoryFilter) (domain.EntryPage, error)
	Entries(ctx context.Context, accountID string, f domain.HistoryFilter) ([]domain.Entry, error)
	Summarize(ctx context.Context, accountID string, f domain.SummaryFilter) (domain.Summary, error)
	Entry(ctx context.Context, id string) (domain.Entry, error)
}

// Service facilitates account service layer logic.
type Service struct {
	store   Store
	engine  Engine
	journal Journal
}

// New returns account service struct to manage account bussines logic.
func New(store Store, engine Engine, journal Journal) *Service {
	return &Service{
		store:   store,
		engine:  engine,
		journal: journal,
	}
}

func checkOwnerCurrency(owner, currency string) (currencypkg.Currency, error) {
	if owner == "" {
		return currencypkg.Currency{}, domain.ErrInvalidOwner
	}

	c, ok := currencypkg.Lookup(currency)
	if !ok {
		return currencypkg.Currency{}, domain.ErrUnsupportedCurrency
	}

	return c, nil
}

// validate checks arg before any storage call. Positive amounts must be
// strictly positive, signed ones only non-zero.
func validate(arg domain.ChangeParams, positive bool) error {
	c, err := checkOwnerCurrency(arg.Owner, arg.Currency)
	if err != nil {
		return err
	}

	switch {
	case positive && !arg.Amount.IsPositive():
		return domain.ErrNonPositiveAmount
	case arg.Amount.IsZero():
		return domain.ErrZeroAmount
	case !c.FitsScale(arg.Amount):
		return domain.ErrAmountPrecision
	}

	if err := domain.CheckIdempotencyKey(arg.IdempotencyKey); err != nil {
		return err
	}

	return domain.CheckReference(arg.Reference)
}

func (s *Service) apply(
	ctx context.Context,
	account domain.Account,
	kind domain.EntryKind,
	amount decimal.Decimal,
	arg domain.ChangeParams,
) (domain.AppliedResult, error) {
	res, err := s.engine.Apply(ctx, domain.ApplyParams{
		AccountID:      account.ID,
		Kind:           kind,
		Amount:         amount,
		IdempotencyKey: arg.IdempotencyKey,
		Reference:      arg.Reference,
	})
	if err != nil {
		l := zerolog.Ctx(ctx)
		l.Info().Err(err).Str("account_id", account.ID).Str("kind", string(kind)).Send()

		return domain.AppliedResult{}, err
	}

	return res, nil
}

func (s *Service) change(ctx context.Context, kind domain.EntryKind, amount decimal.Decimal, arg domain.ChangeParams) (domain.AppliedResult, error) {
	account, err := s.store.GetAccountByOwner(ctx, arg.Owner, arg.Currency)
	if err != nil {
		return domain.AppliedResult{}, err
	}

	return s.apply(ctx, account, kind, amount, arg)
}

// getOrCreate returns the owner's account, creating an empty one on first use.
func (s *Service) getOrCreate(ctx context.Context, owner, currency string) (domain.Account, error) {
	account, err := s.store.GetAccountByOwner(ctx, owner, currency)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return account, err
	}

	account, err = s.store.CreateAccount(ctx, domain.CreateAccountParams{Owner: owner, Currency: currency})
	if errors.Is(err, domain.ErrAccountAlreadyExists) {
		return s.store.GetAccountByOwner(ctx, owner, currency)
	}

	return account, err
}

// Deposit credits amount to the owner's account, opening it on first deposit.
func (s *Service) Deposit(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, true); err != nil {
		return domain.AppliedResult{}, err
	}

	account, err := s.getOrCreate(ctx, arg.Owner, arg.Currency)
	if err != nil {
		return domain.AppliedResult{}, err
	}

	return s.apply(ctx, account, domain.KindDeposit, arg.Amount, arg)
}

// Withdraw debits amount from the owner's account.
func (s *Service) Withdraw(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, true); err != nil {
		return domain.AppliedResult{}, err
	}

	return s.change(ctx, domain.KindWithdrawal, arg.Amount.Neg(), arg)
}

// RecordTrade records the cash leg of a trade: a negative amount is a buy,
// a positive one a sell. Reference identifies the trade.
func (s *Service) RecordTrade(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, false); err != nil {
		return domain.AppliedResult{}, err
	}

	kind := domain.KindTradeSell
	if arg.Amount.IsNegative() {
		kind = domain.KindTradeBuy
	}

	return s.change(ctx, kind, arg.Amount, arg)
}

// RecordCopyTradePnl records profit or loss realised by copying a trader.
// Reference identifies the trader.
func (s *Service) RecordCopyTradePnl(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, false); err != nil {
		return domain.AppliedResult{}, err
	}

	return s.change(ctx, domain.KindCopyTradePnl, arg.Amount, arg)
}

// ChargeCopyTradeFee debits the fee owed to a copied trader.
func (s *Service) ChargeCopyTradeFee(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, true); err != nil {
		return domain.AppliedResult{}, err
	}

	return s.change(ctx, domain.KindCopyTradeFee, arg.Amount.Neg(), arg)
}

// ChargeFee debits a platform fee.
func (s *Service) ChargeFee(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, true); err != nil {
		return domain.AppliedResult{}, err
	}

	return s.change(ctx, domain.KindFee, arg.Amount.Neg(), arg)
}

// AdjustPnl applies a manual profit and loss correction of either sign.
func (s *Service) AdjustPnl(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error) {
	if err := validate(arg, false); err != nil {
		return domain.AppliedResult{}, err
	}

	return s.change(ctx, domain.KindPnlAdjustment, arg.Amount, arg)
}

// ReverseEntry appends an opposite-signed entry of the same kind.
//
// The reversal is keyed by the reversed entry id, so an entry is reversed at
// most once and repeated calls return the original reversal. Reversing a
// reversal restores the sign its kind requires.
func (s *Service) ReverseEntry(ctx context.Context, owner, entryID string) (domain.AppliedResult, error) {
	if owner == "" {
		return domain.AppliedResult{}, domain.ErrInvalidOwner
	}

	entry, err := s.journal.Entry(ctx, entryID)
	if err != nil {
		return domain.AppliedResult{}, err
	}

	account, err := s.store.GetAccount(ctx, entry.AccountID)
	if err != nil {
		return domain.AppliedResult{}, err
	}

	if account.Owner != owner {
		return domain.AppliedResult{}, domain.ErrEntryNotFound
	}

	return s.engine.Apply(ctx, domain.ApplyParams{
		AccountID:      account.ID,
		Kind:           entry.Kind,
		Amount:         entry.Amount.Neg(),
		IdempotencyKey: domain.ReversalPrefix + entry.ID,
		Reference:      domain.ReversalPrefix + entry.ID,
		Reversal:       entry.Kind.CheckAmount(entry.Amount) == nil,
	})
}

// OpenAccount creates an empty account for the owner in the given currency.
func (s *Service) OpenAccount(ctx context.Context, owner, currency string, allowNegative bool) (domain.Account, error) {
	if _, err := checkOwnerCurrency(owner, currency); err != nil {
		return domain.Account{}, err
	}

	return s.store.CreateAccount(ctx, domain.CreateAccountParams{
		Owner:         owner,
		Currency:      currency,
		AllowNegative: allowNegative,
	})
}

// CloseAccount closes an empty active account. Closed accounts keep their history.
func (s *Service) CloseAccount(ctx context.Context, owner, currency string) (domain.Account, error) {
	account, err := s.GetBalance(ctx, owner, currency)
	if err != nil {
		return domain.Account{}, err
	}

	if account.Status == domain.AccountClosed {
		return account, nil
	}

	if err := account.CheckWritable(); err != nil {
		return domain.Account{}, err
	}

	if !account.Balance.IsZero() {
		return domain.Account{}, domain.ErrAccountNotEmpty
	}

	account, err = s.store.CloseAccount(ctx, account.ID, account.Version)
	if errors.Is(err, domain.ErrVersionConflict) {
		return domain.Account{}, domain.ErrContentionExceeded
	}

	return account, err
}

// ListAccounts returns every account of the owner.
func (s *Service) ListAccounts(ctx context.Context, owner string) ([]domain.Account, error) {
	if owner == "" {
		return nil, domain.ErrInvalidOwner
	}

	return s.store.ListAccounts(ctx, owner)
}

// GetBalance returns a snapshot of the owner's account in the given currency.
func (s *Service) GetBalance(ctx context.Context, owner, currency string) (domain.Account, error) {
	if _, err := checkOwnerCurrency(owner, currency); err != nil {
		return domain.Account{}, err
	}

	return s.store.GetAccountByOwner(ctx, owner, currency)
}

// Reconcile verifies the owner's account against its journal.
func (s *Service) Reconcile(ctx context.Context, owner, currency string) (domain.ReconcileReport, error) {
	account, err := s.GetBalance(ctx, owner, currency)
	if err != nil {
		return domain.ReconcileReport{}, err
	}

	return s.engine.Reconcile(ctx, account.ID)
}

// GetHistory returns one page of the owner's account journal, newest first.
func (s *Service) GetHistory(ctx context.Context, owner, currency string, f domain.HistoryFilter) (domain.EntryPage, error) {
	account, err := s.GetBalance(ctx, owner, currency)
	if err != nil {
		return domain.EntryPage{}, err
	}

	return s.journal.History(ctx, account.ID, f)
}

// ExportHistory returns every journal entry matching f, newest first.
func (s *Service) ExportHistory(ctx context.Context, owner, currency string, f domain.HistoryFilter) ([]domain.Entry, error) {
	account, err := s.GetBalance(ctx, owner, currency)
	if err != nil {
		return nil, err
	}

	return s.journal.Entries(ctx, account.ID, f)
}

// Summarize aggregates the owner's account journal.
func (s *Service) Summarize(ctx context.Context, owner, currency string, f domain.SummaryFilter) (domain.Summary, error) {
	if err := domain.CheckTimeRange(f.Since, f.Until); err != nil {
		return domain.Summary{}, err
	}

	if err := domain.CheckKinds(f.Kinds); err != nil {
		return domain.Summary{}, err
	}

	account, err := s.GetBalance(ctx, owner, currency)
	if err != nil {
		return domain.Summary{}, err
	}

	return s.journal.Summarize(ctx, account.ID, f)
}

// ProfitAndLoss summarises the trading and copy-trading entries in the range.
func (s *Service) ProfitAndLoss(ctx context.Context, owner, currency string, since, until time.Time) (domain.Summary, error) {
	return s.Summarize(ctx, owner, currency, domain.SummaryFilter{
		Since: since,
		Until: until,
		Kinds: domain.PnlKinds,
	})
}
