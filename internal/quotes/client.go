package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/logger"
)

// Source retrieves the full daily series of a symbol from a remote provider.
//
// Implementations must report failures as *Error values with one of the
// package kinds (ErrSymbolNotFound, ErrRateLimited, ErrNetwork,
// ErrMalformedData, ErrProvider) so callers can branch on errors.Is.
type Source interface {
	DailySeries(ctx context.Context, symbol, apiKey string) (models.Series, error)
}

// Client answers quote queries for a single API key. It owns its series
// cache; two clients never share cached data.
type Client struct {
	apiKey string
	source Source
	cache  *SeriesCache
}

// New builds a Client. apiKey is resolved through ResolveAPIKey, so an empty
// value falls back to the ALPHA_VANTAGE_API_KEY environment variable.
func New(apiKey string, source Source) (*Client, error) {
	key, err := ResolveAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("quotes: nil source")
	}
	return &Client{
		apiKey: key,
		source: source,
		cache:  NewSeriesCache(),
	}, nil
}

// Cache exposes the client's series cache.
func (c *Client) Cache() *SeriesCache { return c.cache }

// Series returns the daily series of symbol, fetching it from the source on
// the first call and serving it from the cache afterwards.
func (c *Client) Series(ctx context.Context, symbol string) (models.Series, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return models.Series{}, err
	}

	s, hit, err := c.cache.GetOrFetch(ctx, sym, func(ctx context.Context) (models.Series, error) {
		start := time.Now()
		logger.L().Info().Str("symbol", sym).Msg("fetching daily series")

		s, err := c.source.DailySeries(ctx, sym, c.apiKey)
		if err != nil {
			logger.L().Warn().Str("symbol", sym).Dur("elapsed", time.Since(start)).Err(err).Msg("fetch failed")
			return models.Series{}, err
		}
		s.Symbol = sym
		logger.L().Info().Str("symbol", sym).Int("observations", s.Len()).Dur("elapsed", time.Since(start)).Msg("series cached")
		return s, nil
	})
	if err != nil {
		return models.Series{}, err
	}
	if hit {
		logger.L().Debug().Str("symbol", sym).Msg("series cache hit")
	}
	return s, nil
}

// ParseDate parses a YYYY-MM-DD date. Any other format fails with
// ErrInvalidDate.
func ParseDate(symbol, date string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, &Error{Kind: ErrInvalidDate, Symbol: symbol, Date: date, Msg: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// LookupDate is Lookup for a date given as a YYYY-MM-DD string.
func (c *Client) LookupDate(ctx context.Context, symbol, date string) (models.Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return models.Quote{}, err
	}
	d, err := ParseDate(sym, date)
	if err != nil {
		return models.Quote{}, err
	}
	return c.Lookup(ctx, symbol, d)
}

// Lookup returns the OHLCV record of symbol on day. Only an exact date
// match counts; non-trading days fail with ErrDateNotFound.
func (c *Client) Lookup(ctx context.Context, symbol string, day time.Time) (models.Quote, error) {
	s, err := c.Series(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	day = models.TruncateDate(day)
	obs, ok := s.Find(day)
	if !ok {
		return models.Quote{}, &Error{Kind: ErrDateNotFound, Symbol: s.Symbol, Date: day.Format(models.DateLayout)}
	}
	return models.QuoteFromObservation(s.Symbol, obs), nil
}

// Min returns the lowest close among the n most recent observations.
func (c *Client) Min(ctx context.Context, symbol string, n int) (models.Extreme, error) {
	return c.extreme(ctx, symbol, n, models.ExtremeMin)
}

// Max returns the highest close among the n most recent observations.
func (c *Client) Max(ctx context.Context, symbol string, n int) (models.Extreme, error) {
	return c.extreme(ctx, symbol, n, models.ExtremeMax)
}

func (c *Client) extreme(ctx context.Context, symbol string, n int, kind models.ExtremeKind) (models.Extreme, error) {
	if n <= 0 {
		sym, _ := NormalizeSymbol(symbol)
		return models.Extreme{}, &Error{Kind: ErrInvalidRange, Symbol: sym, N: n, Msg: "n must be a positive integer"}
	}
	s, err := c.Series(ctx, symbol)
	if err != nil {
		return models.Extreme{}, err
	}
	if s.Len() == 0 {
		return models.Extreme{}, &Error{Kind: ErrEmptyHistory, Symbol: s.Symbol, N: n}
	}
	return Reduce(s, n, kind), nil
}

// Reduce scans the window of the n most recent observations of s (all of
// them when s is shorter) and picks the extreme close. The scan runs from the
// most recent day backwards and only replaces the candidate on a strictly
// better close, so ties resolve to the most recent date.
//
// s must be non-empty and n positive.
func Reduce(s models.Series, n int, kind models.ExtremeKind) models.Extreme {
	window := s.Window(n)
	best := window[0]
	for _, obs := range window[1:] {
		switch kind {
		case models.ExtremeMin:
			if obs.Close < best.Close {
				best = obs
			}
		case models.ExtremeMax:
			if obs.Close > best.Close {
				best = obs
			}
		}
	}
	return models.Extreme{
		Symbol:    s.Symbol,
		Kind:      kind,
		Price:     best.Close,
		Date:      best.Date,
		Requested: n,
		Count:     len(window),
		Period:    Period(len(window)),
	}
}

// Period describes a window of count trading days.
func Period(count int) string {
	if count == 1 {
		return "last 1 trading day"
	}
	return fmt.Sprintf("last %d trading days", count)
}
