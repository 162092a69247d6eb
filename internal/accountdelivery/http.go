// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/trade-ledger/internal/domain"
	"github.com/go-petr/trade-ledger/internal/middleware"
	"github.com/go-petr/trade-ledger/pkg/errorspkg"
	"github.com/go-petr/trade-ledger/pkg/web"
)

// IdempotencyKeyHeader carries the idempotency key of a mutating request.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	OpenAccount(ctx context.Context, owner, currency string, allowNegative bool) (domain.Account, error)
	CloseAccount(ctx context.Context, owner, currency string) (domain.Account, error)
	ListAccounts(ctx context.Context, owner string) ([]domain.Account, error)
	GetBalance(ctx context.Context, owner, currency string) (domain.Account, error)
	Deposit(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	Withdraw(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	RecordTrade(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	RecordCopyTradePnl(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	ChargeCopyTradeFee(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	ChargeFee(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	AdjustPnl(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)
	ReverseEntry(ctx context.Context, owner, entryID string) (domain.AppliedResult, error)
	Reconcile(ctx context.Context, owner, currency string) (domain.ReconcileReport, error)
	GetHistory(ctx context.Context, owner, currency string, f domain.HistoryFilter) (domain.EntryPage, error)
	ExportHistory(ctx context.Context, owner, currency string, f domain.HistoryFilter) ([]domain.Entry, error)
	Summarize(ctx context.Context, owner, currency string, f domain.SummaryFilter) (domain.Summary, error)
	ProfitAndLoss(ctx context.Context, owner, currency string, since, until time.Time) (domain.Summary, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type accountData struct {
	Account domain.Account `json:"account"`
}

type accountsData struct {
	Accounts []domain.Account `json:"accounts"`
}

// bindError answers a request that failed binding or validation.
func bindError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	errMsg := err.Error()

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		errMsg = web.GetErrorMsg(ve[0])
	}

	l.Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

// errorStatus maps a ledger error to its http status and client facing error.
func errorStatus(err error) (int, error) {
	switch {
	case errors.Is(err, domain.ErrAccountClosed), errors.Is(err, domain.ErrAccountFrozen):
		return http.StatusLocked, err
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, err
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, err
	case errors.Is(err, domain.ErrContentionExceeded):
		return http.StatusConflict, err
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, err
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorspkg.ErrTimeout
	}

	return http.StatusInternalServerError, errorspkg.ErrInternal
}

// serviceError answers a request that failed in the service layer.
func serviceError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())

	status, public := errorStatus(err)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Send()
	} else {
		l.Info().Err(err).Send()
	}

	gctx.JSON(status, web.Response{
		Error:     public.Error(),
		Retryable: domain.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded),
	})
}

type openRequest struct {
	Currency      string `json:"currency" binding:"required,currency"`
	AllowNegative bool   `json:"allow_negative"`
}

// OpenAccount handles http request to open an account.
func (h *Handler) OpenAccount(gctx *gin.Context) {
	var req openRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.OpenAccount(gctx.Request.Context(), middleware.Owner(gctx), req.Currency, req.AllowNegative)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(accountData{account}))
}

// ListAccounts handles http request to list the owner's accounts.
func (h *Handler) ListAccounts(gctx *gin.Context) {
	accounts, err := h.service.ListAccounts(gctx.Request.Context(), middleware.Owner(gctx))
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(accountsData{accounts}))
}

type currencyURI struct {
	Currency string `uri:"currency" binding:"required,currency"`
}

// GetBalance handles http request to get an account balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.GetBalance(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(accountData{account}))
}

// CloseAccount handles http request to close an empty account.
func (h *Handler) CloseAccount(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.CloseAccount(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(accountData{account}))
}

type changeRequest struct {
	Amount         string `json:"amount" binding:"required,decimal"`
	Reference      string `json:"reference" binding:"max=256"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=128"`
}

type changeFunc func(ctx context.Context, arg domain.ChangeParams) (domain.AppliedResult, error)

// change binds a balance change request and hands it to op.
func (h *Handler) change(gctx *gin.Context, op changeFunc) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req changeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	key := gctx.GetHeader(IdempotencyKeyHeader)
	if key == "" {
		key = req.IdempotencyKey
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		serviceError(gctx, domain.ErrInvalidAmount)
		return
	}

	res, err := op(gctx.Request.Context(), domain.ChangeParams{
		Owner:          middleware.Owner(gctx),
		Currency:       uri.Currency,
		Amount:         amount,
		Reference:      req.Reference,
		IdempotencyKey: key,
	})
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(res))
}

// Deposit handles http request to credit an account.
func (h *Handler) Deposit(gctx *gin.Context) { h.change(gctx, h.service.Deposit) }

// Withdraw handles http request to debit an account.
func (h *Handler) Withdraw(gctx *gin.Context) { h.change(gctx, h.service.Withdraw) }

// RecordTrade handles http request to record the cash leg of a trade.
func (h *Handler) RecordTrade(gctx *gin.Context) { h.change(gctx, h.service.RecordTrade) }

// RecordCopyTradePnl handles http request to record copy-trading profit or loss.
func (h *Handler) RecordCopyTradePnl(gctx *gin.Context) { h.change(gctx, h.service.RecordCopyTradePnl) }

// ChargeCopyTradeFee handles http request to charge a copy-trading fee.
func (h *Handler) ChargeCopyTradeFee(gctx *gin.Context) { h.change(gctx, h.service.ChargeCopyTradeFee) }

// ChargeFee handles http request to charge a platform fee.
func (h *Handler) ChargeFee(gctx *gin.Context) { h.change(gctx, h.service.ChargeFee) }

// AdjustPnl handles http request to correct profit and loss.
func (h *Handler) AdjustPnl(gctx *gin.Context) { h.change(gctx, h.service.AdjustPnl) }

type entryURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ReverseEntry handles http request to reverse a committed entry.
func (h *Handler) ReverseEntry(gctx *gin.Context) {
	var uri entryURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	res, err := h.service.ReverseEntry(gctx.Request.Context(), middleware.Owner(gctx), uri.ID)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(res))
}

// Reconcile handles http request to verify an account against its journal.
//
// A failed reconciliation still carries the report.
func (h *Handler) Reconcile(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	report, err := h.service.Reconcile(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency)
	if errors.Is(err, domain.ErrInvariantViolation) && report.AccountID != "" {
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Response{Data: report, Error: domain.ErrInvariantViolation.Error()})

		return
	}

	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(report))
}

type rangeQuery struct {
	Since time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Kinds string    `form:"kinds"`
}

// parseKinds splits a comma separated kinds filter.
func parseKinds(s string) []domain.EntryKind {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	kinds := make([]domain.EntryKind, 0, len(parts))

	for _, p := range parts {
		kinds = append(kinds, domain.EntryKind(strings.ToUpper(strings.TrimSpace(p))))
	}

	return kinds
}

type historyQuery struct {
	Since  time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until  time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Kinds  string    `form:"kinds"`
	Cursor string    `form:"cursor"`
	Limit  int       `form:"limit" binding:"min=0"`
}

func (q historyQuery) filter() domain.HistoryFilter {
	return domain.HistoryFilter{
		Since:  q.Since,
		Until:  q.Until,
		Kinds:  parseKinds(q.Kinds),
		Cursor: q.Cursor,
		Limit:  q.Limit,
	}
}

// GetHistory handles http request to page through an account journal.
func (h *Handler) GetHistory(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var q historyQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		bindError(gctx, err)
		return
	}

	page, err := h.service.GetHistory(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency, q.filter())
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(page))
}

// Summarize handles http request to aggregate an account journal.
func (h *Handler) Summarize(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var q rangeQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		bindError(gctx, err)
		return
	}

	f := domain.SummaryFilter{Since: q.Since, Until: q.Until, Kinds: parseKinds(q.Kinds)}

	sum, err := h.service.Summarize(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency, f)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(sum))
}

// ProfitAndLoss handles http request to get the profit and loss of an account.
func (h *Handler) ProfitAndLoss(gctx *gin.Context) {
	var uri currencyURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var q rangeQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		bindError(gctx, err)
		return
	}

	sum, err := h.service.ProfitAndLoss(gctx.Request.Context(), middleware.Owner(gctx), uri.Currency, q.Since, q.Until)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Data(sum))
}
