package models

import "time"

// Quote is the result of a point lookup: the OHLCV record of one symbol on
// one date.
type Quote struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// QuoteFromObservation copies obs field by field.
func QuoteFromObservation(symbol string, obs Observation) Quote {
	return Quote{
		Symbol: symbol,
		Date:   obs.Date,
		Open:   obs.Open,
		High:   obs.High,
		Low:    obs.Low,
		Close:  obs.Close,
		Volume: obs.Volume,
	}
}

// ExtremeKind selects which end of the close-price range a window query returns.
type ExtremeKind string

const (
	ExtremeMin ExtremeKind = "min"
	ExtremeMax ExtremeKind = "max"
)

// Extreme is the result of a windowed min/max query.
//
// Fields:
//   - Kind: min or max.
//   - Price: the extreme close price found in the window.
//   - Date: the session the extreme occurred on (most recent one on ties).
//   - Requested: the n asked for by the caller.
//   - Count: observations actually considered (<= Requested).
//   - Period: human readable description of the window, e.g. "last 30 trading days".
type Extreme struct {
	Symbol    string
	Kind      ExtremeKind
	Price     float64
	Date      time.Time
	Requested int
	Count     int
	Period    string
}
