// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/trade-ledger/internal/accountdelivery"
	"github.com/go-petr/trade-ledger/internal/accountservice"
	"github.com/go-petr/trade-ledger/internal/balanceservice"
	"github.com/go-petr/trade-ledger/internal/journalservice"
	"github.com/go-petr/trade-ledger/internal/ledgerrepo"
	"github.com/go-petr/trade-ledger/internal/middleware"
	"github.com/go-petr/trade-ledger/pkg/configpkg"
	"github.com/go-petr/trade-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// EngineConfig returns the balance engine retry settings of config.
func EngineConfig(config configpkg.Config) balanceservice.Config {
	return balanceservice.Config{
		MaxAttempts: config.MaxAttempts,
		BackoffBase: config.BackoffBase,
		BackoffMax:  config.BackoffMax,
	}
}

// New creates Server type with instantiated domains and routes.
//
// feed receives committed entries and reconciliation alerts; it may be nil.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, feed balanceservice.Publisher) (*Server, error) {
	tokenMaker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := accountdelivery.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("cannot register validators: %w", err)
		}
	}

	store := ledgerrepo.New(conn)

	engine := balanceservice.New(store, feed, EngineConfig(config))
	journal := journalservice.New(store)
	accountService := accountservice.New(store, engine, journal)

	accountHandler := accountdelivery.NewHandler(accountService)

	router := gin.New()

	router.Use(middleware.RequestLogger(logger))

	authRoutes := router.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.OpenAccount)
	authRoutes.GET("/accounts", accountHandler.ListAccounts)
	authRoutes.GET("/accounts/:currency", accountHandler.GetBalance)
	authRoutes.DELETE("/accounts/:currency", accountHandler.CloseAccount)

	authRoutes.POST("/accounts/:currency/deposits", accountHandler.Deposit)
	authRoutes.POST("/accounts/:currency/withdrawals", accountHandler.Withdraw)
	authRoutes.POST("/accounts/:currency/trades", accountHandler.RecordTrade)
	authRoutes.POST("/accounts/:currency/copy-trades/pnl", accountHandler.RecordCopyTradePnl)
	authRoutes.POST("/accounts/:currency/copy-trades/fees", accountHandler.ChargeCopyTradeFee)
	authRoutes.POST("/accounts/:currency/fees", accountHandler.ChargeFee)
	authRoutes.POST("/accounts/:currency/adjustments", accountHandler.AdjustPnl)
	authRoutes.POST("/entries/:id/reversals", accountHandler.ReverseEntry)

	authRoutes.GET("/accounts/:currency/entries", accountHandler.GetHistory)
	authRoutes.GET("/accounts/:currency/entries/export", accountHandler.ExportHistory)
	authRoutes.GET("/accounts/:currency/summary", accountHandler.Summarize)
	authRoutes.GET("/accounts/:currency/pnl", accountHandler.ProfitAndLoss)
	authRoutes.POST("/accounts/:currency/reconciliation", accountHandler.Reconcile)

	server := &Server{
		DB:         conn,
		Engine:     router,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	return server, nil
}
