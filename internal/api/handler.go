package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quotepulse/internal/domain/dto"
	"github.com/guttosm/quotepulse/internal/domain/models"
	"github.com/guttosm/quotepulse/internal/quotes"
	"github.com/guttosm/quotepulse/internal/service"
)

const (
	// APIKeyHeader carries an optional per-request Alpha Vantage key.
	APIKeyHeader = "X-API-Key"

	// DefaultWindow is the n used by the min/max routes when none is given.
	DefaultWindow = 30
)

// Handler serves the quote endpoints. Errors are attached with c.Error and
// rendered by middleware.ErrorHandler.
type Handler struct {
	svc        service.QuoteService
	defaultKey string
}

// NewHandler builds a Handler. defaultKey is used when a request carries no
// X-API-Key header; when it is empty too, the key resolves through the
// ALPHA_VANTAGE_API_KEY environment variable.
func NewHandler(svc service.QuoteService, defaultKey string) *Handler {
	return &Handler{svc: svc, defaultKey: defaultKey}
}

func (h *Handler) apiKey(c *gin.Context) string {
	if k := strings.TrimSpace(c.GetHeader(APIKeyHeader)); k != "" {
		return k
	}
	return h.defaultKey
}

// GetQuote godoc
// @Summary      Daily record for one date
// @Description  Returns open, high, low, close and volume of the symbol on the given trading date
// @Tags         quotes
// @Produce      json
// @Param        symbol     path      string  true   "Ticker symbol" example(AAPL)
// @Param        date       query     string  true   "Trading date in YYYY-MM-DD" example(2023-01-10)
// @Param        X-API-Key  header    string  false  "Alpha Vantage API key"
// @Success      200        {object}  dto.QuoteResponse
// @Failure      400        {object}  dto.ErrorResponse  "Invalid symbol or date"
// @Failure      401        {object}  dto.ErrorResponse  "No API key"
// @Failure      404        {object}  dto.ErrorResponse  "Unknown symbol or no record on date"
// @Failure      429        {object}  dto.ErrorResponse  "Rate limited"
// @Failure      502        {object}  dto.ErrorResponse  "Upstream error"
// @Failure      504        {object}  dto.ErrorResponse  "Upstream unreachable"
// @Router       /api/v1/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	symbol := c.Param("symbol")
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		_ = c.Error(&quotes.Error{Kind: quotes.ErrInvalidDate, Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Msg: "date is required"})
		return
	}

	q, err := h.svc.Lookup(c.Request.Context(), symbol, date, h.apiKey(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// GetMin godoc
// @Summary      Lowest close over the last n trading days
// @Tags         quotes
// @Produce      json
// @Param        symbol     path      string  true   "Ticker symbol" example(MSFT)
// @Param        n          query     int     false  "Window size in trading days" default(30)
// @Param        X-API-Key  header    string  false  "Alpha Vantage API key"
// @Success      200        {object}  dto.MinResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      429        {object}  dto.ErrorResponse
// @Failure      502        {object}  dto.ErrorResponse
// @Failure      504        {object}  dto.ErrorResponse
// @Router       /api/v1/quotes/{symbol}/min [get]
func (h *Handler) GetMin(c *gin.Context) {
	h.extreme(c, h.svc.Min)
}

// GetMax godoc
// @Summary      Highest close over the last n trading days
// @Tags         quotes
// @Produce      json
// @Param        symbol     path      string  true   "Ticker symbol" example(GOOGL)
// @Param        n          query     int     false  "Window size in trading days" default(30)
// @Param        X-API-Key  header    string  false  "Alpha Vantage API key"
// @Success      200        {object}  dto.MaxResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      429        {object}  dto.ErrorResponse
// @Failure      502        {object}  dto.ErrorResponse
// @Failure      504        {object}  dto.ErrorResponse
// @Router       /api/v1/quotes/{symbol}/max [get]
func (h *Handler) GetMax(c *gin.Context) {
	h.extreme(c, h.svc.Max)
}

func (h *Handler) extreme(c *gin.Context, fn func(ctx context.Context, symbol string, n int, apiKey string) (models.Extreme, error)) {
	symbol := c.Param("symbol")

	n := DefaultWindow
	if raw := strings.TrimSpace(c.Query("n")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(&quotes.Error{Kind: quotes.ErrInvalidRange, Symbol: strings.ToUpper(strings.TrimSpace(symbol)), Msg: "n must be an integer", Err: err})
			return
		}
		n = v
	}

	e, err := fn(c.Request.Context(), symbol, n, h.apiKey(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewExtremeResponse(e))
}
