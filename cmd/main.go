package main

//
//  @title           quotepulse API
//  @version         1.0
//  @description     Alpha Vantage daily prices: point lookups and trailing-window min/max.
//  @termsOfService  https://github.com/guttosm/quotepulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/quotepulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        quotes
//  @tag.description Daily prices, lookups and window extremes
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guttosm/quotepulse/config"
	_ "github.com/guttosm/quotepulse/docs" // swagger docs
	"github.com/guttosm/quotepulse/internal/app"
	"github.com/guttosm/quotepulse/internal/domain/dto"
	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/logger"
	"github.com/guttosm/quotepulse/internal/middleware"
	"github.com/guttosm/quotepulse/internal/warmup"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown blocks until SIGINT or SIGTERM, then shuts the server
// down and runs cleanup.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// cliArgs are the flags of the one-shot modes.
type cliArgs struct {
	mode     string
	symbol   string
	date     string
	n        int
	symbols  string
	apiKey   string
	parallel int
	output   string
}

// warmSummary is one line of the warm mode output.
type warmSummary struct {
	Symbol       string `json:"symbol" yaml:"symbol"`
	Observations int    `json:"observations" yaml:"observations"`
	Latest       string `json:"latest,omitempty" yaml:"latest,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

type encoder interface {
	Encode(v any) error
}

// newEncoder returns an indented JSON encoder, or a YAML one for
// format "yaml".
func newEncoder(format string, out io.Writer) (encoder, error) {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc, nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		return enc, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// runQuery executes a one-shot mode and writes its result to out in the
// format selected by args.output.
func runQuery(ctx context.Context, c *app.Components, args cliArgs, out io.Writer) error {
	enc, err := newEncoder(args.output, out)
	if err != nil {
		return err
	}
	if closer, ok := enc.(io.Closer); ok {
		defer closer.Close()
	}

	switch args.mode {
	case "lookup":
		q, err := c.Service.Lookup(ctx, args.symbol, args.date, args.apiKey)
		if err != nil {
			return err
		}
		return enc.Encode(dto.NewQuoteResponse(q))

	case "min", "max":
		fn := c.Service.Min
		if args.mode == "max" {
			fn = c.Service.Max
		}
		e, err := fn(ctx, args.symbol, args.n, args.apiKey)
		if err != nil {
			return err
		}
		return enc.Encode(dto.NewExtremeResponse(e))

	case "warm":
		report, runErr := warmup.Run(ctx, c.Registry, config.SplitSymbols(args.symbols), args.apiKey, args.parallel)
		summary := make([]warmSummary, 0, len(report.Results))
		for _, res := range report.Results {
			s := warmSummary{Symbol: res.Symbol, Observations: res.Observations}
			if !res.Latest.IsZero() {
				s.Latest = res.Latest.Format(models.DateLayout)
			}
			if res.Err != nil {
				s.Error = res.Err.Error()
			}
			summary = append(summary, s)
		}
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return runErr
	}

	return fmt.Errorf("unknown mode %q", args.mode)
}

// writeError prints err to w as an ErrorResponse carrying the same code the
// HTTP API would use.
func writeError(w io.Writer, err error) {
	_, code, message := middleware.StatusFor(err)
	resp := dto.NewErrorResponse(message, err)
	resp.Code = code
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// main is the entry point of quotepulse.
//
// Modes (selected via --mode flag):
//   - api:    Starts the REST API (default).
//   - lookup: Prints the record of --symbol on --date.
//   - min:    Prints the lowest close of --symbol over the last --n sessions.
//   - max:    Prints the highest close of --symbol over the last --n sessions.
//   - warm:   Fetches --symbols into the cache and prints a summary.
//
// One-shot modes log to stderr and print JSON (or YAML with --output=yaml)
// to stdout; failures print an
// ErrorResponse to stderr and exit with status 1.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()
	cfg := config.AppConfig

	mode := flag.String("mode", "api", "Mode: api, lookup, min, max or warm")
	symbol := flag.String("symbol", "", "Ticker symbol (lookup, min, max)")
	date := flag.String("date", "", "Trading date YYYY-MM-DD (lookup)")
	n := flag.Int("n", 30, "Window size in trading days (min, max)")
	symbols := flag.String("symbols", strings.Join(cfg.Warmup.Symbols, ","), "Comma separated symbols (warm)")
	parallel := flag.Int("parallel", cfg.Warmup.Parallel, "Concurrent fetches (warm)")
	apiKey := flag.String("apikey", cfg.AlphaVantage.APIKey, "Alpha Vantage API key; defaults to ALPHA_VANTAGE_API_KEY")
	output := flag.String("output", "json", "Output format of one-shot modes: json or yaml")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()

	if *mode == "api" {
		logger.Init()
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)
		return
	}

	logger.Configure(logger.Options{Level: os.Getenv("LOG_LEVEL"), Out: os.Stderr})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Msg("app init error")
	}

	err = runQuery(ctx, c, cliArgs{
		mode:     *mode,
		symbol:   *symbol,
		date:     *date,
		n:        *n,
		symbols:  *symbols,
		apiKey:   *apiKey,
		parallel: *parallel,
		output:   *output,
	}, os.Stdout)
	cleanup()
	if err != nil {
		writeError(os.Stderr, err)
		os.Exit(1)
	}
}
