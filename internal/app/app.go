package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quotepulse/config"
	"github.com/guttosm/quotepulse/internal/alphavantage"
	"github.com/guttosm/quotepulse/internal/api"
	"github.com/guttosm/quotepulse/internal/logger"
	"github.com/guttosm/quotepulse/internal/quotes"
	"github.com/guttosm/quotepulse/internal/service"
	"github.com/guttosm/quotepulse/internal/storage"
	"github.com/guttosm/quotepulse/internal/warmup"
)

// migrate is an indirection for unit testing; defaults to storage.Migrate.
var migrate = storage.Migrate

// Components are the shared building blocks of the API and CLI modes.
type Components struct {
	Registry *quotes.Registry
	Service  service.QuoteService
	DB       *sql.DB // nil when the audit log is disabled
}

// NewQuoteSource builds the Alpha Vantage client from cfg.
func NewQuoteSource(cfg config.AlphaVantageConfig) *alphavantage.Client {
	opts := []alphavantage.ClientOption{
		alphavantage.WithBaseURL(cfg.BaseURL),
		alphavantage.WithOutputSize(cfg.OutputSize),
		alphavantage.WithDataType(cfg.DataType),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, alphavantage.WithHTTPClient(alphavantage.NewHTTPClient(cfg.Timeout)))
	}
	return alphavantage.NewClient(opts...)
}

// Build wires the quote source, the per-key registry, the audit log (when
// enabled) and the service. The returned cleanup closes the audit DB.
func Build(ctx context.Context, cfg config.Config) (*Components, func(), error) {
	registry := quotes.NewRegistry(NewQuoteSource(cfg.AlphaVantage))

	var (
		db    *sql.DB
		audit storage.QueryLogRepository = storage.NoopQueryLogRepository{}
	)
	if cfg.Audit.Enabled {
		var err error
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		if err := migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate audit log: %w", err)
		}
		audit = storage.NewQueryLogRepository(db)
		logger.L().Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("audit log enabled")
	}

	c := &Components{
		Registry: registry,
		Service:  service.NewQuoteService(registry, audit),
		DB:       db,
	}
	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}
	return c, cleanup, nil
}

// InitializeApp builds the HTTP application from config.AppConfig.
//
// Responsibilities:
//   - Wires the quote layer and the optional audit log (see Build).
//   - Configures the gin router and the health probes.
//   - Starts the warm-up of WARM_SYMBOLS in the background.
//
// Returns:
//   - *gin.Engine: the configured router.
//   - func(): cleanup that stops the warm-up and closes the audit DB.
//   - error: any initialization error.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	ctx, cancel := context.WithCancel(context.Background())
	c, closeDB, err := Build(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	handler := api.NewHandler(c.Service, cfg.AlphaVantage.APIKey)
	router := api.NewRouter(handler, api.RouterOptions{
		RequestTimeout:     cfg.Server.RequestTimeout,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})

	checks := map[string]func(context.Context) error{}
	if c.DB != nil {
		checks["audit_db"] = c.DB.PingContext
	}
	api.NewHealthHandler(checks).Register(router)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if len(cfg.Warmup.Symbols) == 0 {
			return
		}
		if _, err := warmup.Run(ctx, c.Registry, cfg.Warmup.Symbols, cfg.AlphaVantage.APIKey, cfg.Warmup.Parallel); err != nil {
			logger.L().Warn().Err(err).Msg("warm-up stopped")
		}
	}()

	cleanup := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		closeDB()
	}

	return router, cleanup, nil
}
