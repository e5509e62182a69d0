package alphavantage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/quotes"
)

// maxBodyBytes caps the response size; a full daily history is a few MB.
const maxBodyBytes = 64 << 20

// DailySeries retrieves the daily OHLCV history of symbol.
//
// Outcomes:
//   - success payload: parsed into a models.Series (most recent first).
//   - provider error payload: ErrSymbolNotFound, ErrRateLimited or ErrProvider.
//   - transport failure or timeout: ErrNetwork.
//   - unparsable record: ErrMalformedData naming the date.
func (c *Client) DailySeries(ctx context.Context, symbol, apiKey string) (models.Series, error) {
	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", c.outputSize)
	query.Set("datatype", c.dataType)
	query.Set("apikey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrNetwork, Symbol: symbol, Msg: "creating request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrNetwork, Symbol: symbol, Msg: "performing request", Err: redact(err, apiKey)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrNetwork, Symbol: symbol, Msg: "reading response", Err: err}
	}

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusTooManyRequests:
		return models.Series{}, &quotes.Error{Kind: quotes.ErrRateLimited, Symbol: symbol, Msg: "HTTP 429"}

	default:
		return models.Series{}, &quotes.Error{Kind: quotes.ErrProvider, Symbol: symbol, Msg: fmt.Sprintf("unexpected status code: %d", res.StatusCode)}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrSymbolNotFound, Symbol: symbol, Msg: "empty response"}
	}

	// Error payloads are JSON even when CSV was requested.
	if body[0] == '{' {
		return decodeJSON(symbol, body)
	}
	return decodeCSV(symbol, body)
}

// redact strips the API key from transport errors, which embed the URL.
func redact(err error, apiKey string) error {
	var ue *url.Error
	if apiKey == "" || !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return err
	}
	q := u.Query()
	q.Set("apikey", "REDACTED")
	u.RawQuery = q.Encode()
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}
