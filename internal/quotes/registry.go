package quotes

import (
	"context"
	"sync"

	"github.com/guttosm/quotepulse/internal/domain/models"
)

// Registry hands out one Client per API key so callers can pass an optional
// key on every call while each key keeps its own cache.
type Registry struct {
	source Source

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry returns a Registry whose clients all read from source.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source, clients: make(map[string]*Client)}
}

// Client returns the client bound to apiKey, creating it on first use. An
// empty apiKey resolves through the environment.
func (r *Registry) Client(apiKey string) (*Client, error) {
	key, err := ResolveAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[key]; ok {
		return c, nil
	}
	c, err := New(key, r.source)
	if err != nil {
		return nil, err
	}
	r.clients[key] = c
	return c, nil
}

// Lookup resolves the client for apiKey and calls Client.LookupDate.
func (r *Registry) Lookup(ctx context.Context, symbol, date, apiKey string) (models.Quote, error) {
	c, err := r.Client(apiKey)
	if err != nil {
		return models.Quote{}, withSymbol(err, symbol)
	}
	return c.LookupDate(ctx, symbol, date)
}

// Min resolves the client for apiKey and calls Client.Min.
func (r *Registry) Min(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error) {
	c, err := r.Client(apiKey)
	if err != nil {
		return models.Extreme{}, withSymbol(err, symbol)
	}
	return c.Min(ctx, symbol, n)
}

// Max resolves the client for apiKey and calls Client.Max.
func (r *Registry) Max(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error) {
	c, err := r.Client(apiKey)
	if err != nil {
		return models.Extreme{}, withSymbol(err, symbol)
	}
	return c.Max(ctx, symbol, n)
}

// Warm makes sure symbol is cached for apiKey.
func (r *Registry) Warm(ctx context.Context, symbol, apiKey string) (models.Series, error) {
	c, err := r.Client(apiKey)
	if err != nil {
		return models.Series{}, withSymbol(err, symbol)
	}
	return c.Series(ctx, symbol)
}

func withSymbol(err error, symbol string) error {
	if qe, ok := err.(*Error); ok && qe.Symbol == "" {
		cp := *qe
		cp.Symbol, _ = NormalizeSymbol(symbol)
		return &cp
	}
	return err
}
