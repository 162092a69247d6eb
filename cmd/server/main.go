package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/trade-ledger/cmd/httpserver"
	"github.com/go-petr/trade-ledger/internal/balanceservice"
	"github.com/go-petr/trade-ledger/internal/entryfeed"
	"github.com/go-petr/trade-ledger/internal/ledgerrepo"
	"github.com/go-petr/trade-ledger/internal/middleware"
	"github.com/go-petr/trade-ledger/pkg/configpkg"
	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/go-petr/trade-ledger/pkg/dbpkg"

	// Database drivers.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if config.CurrenciesFile != "" {
		if err := currencypkg.LoadCatalogue(config.CurrenciesFile); err != nil {
			logger.Fatal().Err(err).Msg("cannot load currency catalogue")
		}
	}

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource, dbpkg.PoolConfig{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: config.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is migrated from db/migration; the embedded database has no migration tool.
	if config.DBDriver == "sqlite3" {
		if err := ledgerrepo.Migrate(ctx, conn, config.DBDriver); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate db")
		}
	}

	var feed balanceservice.Publisher

	if config.RedisAddress != "" {
		rdb, err := entryfeed.Connect(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}
		defer rdb.Close()

		feed = entryfeed.New(rdb, config.EntryFeedKey)
	}

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := httpserver.New(conn, logger, config, feed)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("cannot shut down server")
		}
	}()

	logger.Info().Str("address", config.ServerAddress).Msg("server started")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
