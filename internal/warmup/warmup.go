package warmup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/logger"
	"github.com/guttosm/quotepulse/internal/quotes"
)

const maxParallel = 8

// Warmer fetches a symbol into its cache. *quotes.Registry satisfies it.
type Warmer interface {
	Warm(ctx context.Context, symbol, apiKey string) (models.Series, error)
}

// Result is the outcome of warming one symbol.
type Result struct {
	Symbol       string
	Observations int
	Latest       time.Time // most recent date; zero for an empty series
	Elapsed      time.Duration
	Err          error
}

// Report lists results in the order symbols were given.
type Report struct {
	Results []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Run prefetches symbols with at most parallel requests in flight.
//
// Behavior:
//   - parallel is clamped to 1..8.
//   - A failure for one symbol (unknown symbol, malformed payload, ...) is
//     recorded in the report and the others continue.
//   - A rate-limit or missing-credential error aborts the run: the remaining
//     symbols would fail the same way. The returned error wraps it.
//
// Returns the report even when the run was aborted; symbols that were never
// attempted carry the context error.
func Run(ctx context.Context, w Warmer, symbols []string, apiKey string, parallel int) (Report, error) {
	if parallel < 1 {
		parallel = 1
	}
	if parallel > maxParallel {
		parallel = maxParallel
	}

	report := Report{Results: make([]Result, len(symbols))}
	if len(symbols) == 0 {
		return report, nil
	}

	logger.L().Info().Int("symbols", len(symbols)).Int("max_parallel", parallel).Msg("warm-up start")
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, symbol := range symbols {
		report.Results[i].Symbol = symbol
		g.Go(func() error {
			res := &report.Results[i]
			if err := gctx.Err(); err != nil {
				res.Err = err
				return nil
			}

			t0 := time.Now()
			s, err := w.Warm(gctx, symbol, apiKey)
			res.Elapsed = time.Since(t0)
			if err != nil {
				res.Err = err
				logger.L().Warn().Str("symbol", symbol).Dur("elapsed", res.Elapsed).Err(err).Msg("warm-up failed")
				if fatal(err) {
					return fmt.Errorf("warm-up aborted at %s: %w", symbol, err)
				}
				return nil
			}

			res.Symbol = s.Symbol
			res.Observations = s.Len()
			if s.Len() > 0 {
				res.Latest = s.Observations[0].Date
			}
			logger.L().Info().Str("symbol", s.Symbol).Int("observations", res.Observations).Dur("elapsed", res.Elapsed).Msg("warmed")
			return nil
		})
	}

	err := g.Wait()
	logger.L().Info().
		Int("symbols", len(symbols)).
		Int("failed", len(report.Failed())).
		Dur("elapsed", time.Since(start)).
		Msg("warm-up done")
	return report, err
}

func fatal(err error) bool {
	return errors.Is(err, quotes.ErrRateLimited) || errors.Is(err, quotes.ErrMissingCredential)
}
