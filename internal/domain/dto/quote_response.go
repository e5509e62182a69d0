package dto

import (
	"github.com/guttosm/quotepulse/internal/domain/models"
)

// QuoteResponse is returned by GET /api/v1/quotes/{symbol}?date=YYYY-MM-DD.
type QuoteResponse struct {
	Symbol string  `json:"symbol" yaml:"symbol" example:"AAPL"`
	Date   string  `json:"date" yaml:"date" example:"2023-01-10"`
	Open   float64 `json:"open" yaml:"open" example:"130.0"`
	High   float64 `json:"high" yaml:"high" example:"131.0"`
	Low    float64 `json:"low" yaml:"low" example:"129.0"`
	Close  float64 `json:"close" yaml:"close" example:"130.5"`
	Volume int64   `json:"volume" yaml:"volume" example:"1000000"`
}

// MinResponse is returned by GET /api/v1/quotes/{symbol}/min.
type MinResponse struct {
	Symbol   string  `json:"symbol" yaml:"symbol" example:"MSFT"`
	MinPrice float64 `json:"min_price" yaml:"min_price" example:"359.49"`
	Date     string  `json:"date" yaml:"date" example:"2025-04-04"`
	Period   string  `json:"period" yaml:"period" example:"last 30 trading days"`
}

// MaxResponse is returned by GET /api/v1/quotes/{symbol}/max.
type MaxResponse struct {
	Symbol   string  `json:"symbol" yaml:"symbol" example:"GOOGL"`
	MaxPrice float64 `json:"max_price" yaml:"max_price" example:"206.78"`
	Date     string  `json:"date" yaml:"date" example:"2025-02-04"`
	Period   string  `json:"period" yaml:"period" example:"last 90 trading days"`
}

// NewQuoteResponse maps a lookup result to its response DTO.
func NewQuoteResponse(q models.Quote) QuoteResponse {
	return QuoteResponse{
		Symbol: q.Symbol,
		Date:   q.Date.Format(models.DateLayout),
		Open:   q.Open,
		High:   q.High,
		Low:    q.Low,
		Close:  q.Close,
		Volume: q.Volume,
	}
}

// NewExtremeResponse maps a min/max result to MinResponse or MaxResponse
// depending on its kind.
func NewExtremeResponse(e models.Extreme) any {
	date := e.Date.Format(models.DateLayout)
	if e.Kind == models.ExtremeMin {
		return MinResponse{Symbol: e.Symbol, MinPrice: e.Price, Date: date, Period: e.Period}
	}
	return MaxResponse{Symbol: e.Symbol, MaxPrice: e.Price, Date: date, Period: e.Period}
}
