package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/logger"
	"github.com/guttosm/quotepulse/internal/quotes"
	"github.com/guttosm/quotepulse/internal/storage"
)

const outcomeOK = "ok"

// Quotes is the query surface the service reads from. *quotes.Registry
// satisfies it.
type Quotes interface {
	Lookup(ctx context.Context, symbol, date, apiKey string) (models.Quote, error)
	Min(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)
	Max(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)
}

// QuoteService answers point lookups and window extremes, recording each
// answered query in the audit log.
type QuoteService interface {
	Lookup(ctx context.Context, symbol, date, apiKey string) (models.Quote, error)
	Min(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)
	Max(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)
}

type quoteService struct {
	quotes Quotes
	audit  storage.QueryLogRepository
	now    func() time.Time
}

// NewQuoteService wires q and audit together. A nil audit disables logging.
func NewQuoteService(q Quotes, audit storage.QueryLogRepository) QuoteService {
	if audit == nil {
		audit = storage.NoopQueryLogRepository{}
	}
	return &quoteService{quotes: q, audit: audit, now: time.Now}
}

func (s *quoteService) Lookup(ctx context.Context, symbol, date, apiKey string) (models.Quote, error) {
	start := s.now()
	q, err := s.quotes.Lookup(ctx, symbol, date, apiKey)

	entry := s.entry(symbol, models.OperationLookup, date, start, err)
	if err == nil {
		entry.Symbol = q.Symbol
		entry.Price = &q.Close
		entry.ResultDate = &q.Date
	}
	s.record(ctx, entry)
	return q, err
}

func (s *quoteService) Min(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error) {
	return s.extreme(ctx, models.OperationMin, symbol, n, apiKey, s.quotes.Min)
}

func (s *quoteService) Max(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error) {
	return s.extreme(ctx, models.OperationMax, symbol, n, apiKey, s.quotes.Max)
}

type extremeFunc func(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)

func (s *quoteService) extreme(ctx context.Context, op, symbol string, n int, apiKey string, fn extremeFunc) (models.Extreme, error) {
	start := s.now()
	e, err := fn(ctx, symbol, n, apiKey)

	entry := s.entry(symbol, op, strconv.Itoa(n), start, err)
	if err == nil {
		entry.Symbol = e.Symbol
		entry.Price = &e.Price
		entry.ResultDate = &e.Date
	}
	s.record(ctx, entry)
	return e, err
}

func (s *quoteService) entry(symbol, op, arg string, start time.Time, err error) models.QueryLogEntry {
	norm, nerr := quotes.NormalizeSymbol(symbol)
	if nerr != nil {
		norm = symbol
	}
	return models.QueryLogEntry{
		ID:        uuid.NewString(),
		Symbol:    norm,
		Operation: op,
		Argument:  arg,
		Outcome:   Outcome(err),
		Elapsed:   s.now().Sub(start),
	}
}

// record never fails the query; audit errors are only logged.
func (s *quoteService) record(ctx context.Context, entry models.QueryLogEntry) {
	if err := s.audit.InsertQueryLog(context.WithoutCancel(ctx), entry); err != nil {
		logger.L().Warn().Err(err).
			Str("symbol", entry.Symbol).
			Str("operation", entry.Operation).
			Msg("failed to record query")
	}
}

// Outcome is the audit outcome of a query: "ok", the error kind text, or
// "error" for failures outside the quote layer.
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if kind := quotes.Kind(err); kind != nil {
		return kind.Error()
	}
	return "error"
}
