package alphavantage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/quotes"
)

const timeSeriesKey = "Time Series (Daily)"

// dailyResponse is the TIME_SERIES_DAILY JSON envelope.
//
//	{
//	  "Meta Data": {"2. Symbol": "IBM", ...},
//	  "Time Series (Daily)": {
//	    "2023-01-10": {"1. open": "130.0", "2. high": "131.0", "3. low": "129.0", "4. close": "130.5", "5. volume": "1000000"}
//	  }
//	}
//
// Failures come back with HTTP 200 and one of "Error Message", "Note" or
// "Information" instead of the time series.
type dailyResponse struct {
	TimeSeries   map[string]json.RawMessage `json:"Time Series (Daily)"`
	ErrorMessage string                     `json:"Error Message"`
	Note         string                     `json:"Note"`
	Information  string                     `json:"Information"`
}

// Record field names, in column order.
const (
	fieldOpen   = "1. open"
	fieldHigh   = "2. high"
	fieldLow    = "3. low"
	fieldClose  = "4. close"
	fieldVolume = "5. volume"
)

func decodeJSON(symbol string, body []byte) (models.Series, error) {
	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Msg: "decoding response", Err: err}
	}

	if resp.ErrorMessage != "" {
		return models.Series{}, &quotes.Error{Kind: quotes.ErrSymbolNotFound, Symbol: symbol, Msg: resp.ErrorMessage}
	}
	for _, msg := range []string{resp.Note, resp.Information} {
		if msg != "" && isRateLimitMessage(msg) {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrRateLimited, Symbol: symbol, Msg: msg}
		}
	}
	if resp.TimeSeries == nil {
		if msg := firstNonEmpty(resp.Information, resp.Note); msg != "" {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrProvider, Symbol: symbol, Msg: msg}
		}
		return models.Series{}, &quotes.Error{Kind: quotes.ErrSymbolNotFound, Symbol: symbol, Msg: "no " + timeSeriesKey + " in response"}
	}

	obs := make([]models.Observation, 0, len(resp.TimeSeries))
	for date, raw := range resp.TimeSeries {
		o, err := parseRecord(date, raw)
		if err != nil {
			return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Date: date, Err: err}
		}
		obs = append(obs, o)
	}
	return newSeries(symbol, obs)
}

// parseRecord converts one dated JSON record into an Observation. Prices
// and volume may be strings (the provider's format) or plain JSON numbers.
// Unknown keys are ignored.
func parseRecord(date string, raw json.RawMessage) (models.Observation, error) {
	var o models.Observation

	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return o, fmt.Errorf("invalid date key %q", date)
	}
	o.Date = d

	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return o, fmt.Errorf("record is not an object: %w", err)
	}

	prices := []struct {
		key string
		dst *float64
	}{
		{fieldOpen, &o.Open},
		{fieldHigh, &o.High},
		{fieldLow, &o.Low},
		{fieldClose, &o.Close},
	}
	for _, p := range prices {
		v, err := floatField(rec, p.key)
		if err != nil {
			return o, err
		}
		*p.dst = v
	}

	vol, err := floatField(rec, fieldVolume)
	if err != nil {
		return o, err
	}
	if vol < 0 || vol != math.Trunc(vol) || vol >= math.MaxInt64 {
		return o, fmt.Errorf("invalid %s: %v", fieldVolume, vol)
	}
	o.Volume = int64(vol)

	return o, nil
}

func floatField(rec map[string]any, key string) (float64, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return parsePrice(key, n)
	default:
		return 0, fmt.Errorf("invalid %s: unexpected type %T", key, v)
	}
}

// parsePrice parses a decimal price cell. NaN and infinities are rejected.
func parsePrice(field, raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: %q", field, raw)
	}
	return f, nil
}

// newSeries orders obs and turns duplicate dates into malformed-data errors.
func newSeries(symbol string, obs []models.Observation) (models.Series, error) {
	s, err := models.NewSeries(symbol, obs)
	if err != nil {
		var date string
		if dup, ok := err.(*models.DuplicateDateError); ok {
			date = dup.Date.Format(models.DateLayout)
		}
		return models.Series{}, &quotes.Error{Kind: quotes.ErrMalformedData, Symbol: symbol, Date: date, Err: err}
	}
	return s, nil
}

func isRateLimitMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "rate limit") ||
		strings.Contains(m, "call frequency") ||
		strings.Contains(m, "requests per day") ||
		strings.Contains(m, "calls per minute")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
