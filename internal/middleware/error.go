package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quotepulse/internal/domain/dto"
	"github.com/guttosm/quotepulse/internal/quotes"
)

const codeInternal = "internal"

type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{quotes.ErrInvalidSymbol, http.StatusBadRequest, "invalid_symbol", "Invalid symbol"},
	{quotes.ErrInvalidDate, http.StatusBadRequest, "invalid_date", "Invalid date, expected YYYY-MM-DD"},
	{quotes.ErrInvalidRange, http.StatusBadRequest, "invalid_range", "Window size must be a positive integer"},
	{quotes.ErrMissingCredential, http.StatusUnauthorized, "missing_credential", "No Alpha Vantage API key configured"},
	{quotes.ErrSymbolNotFound, http.StatusNotFound, "symbol_not_found", "Symbol not found"},
	{quotes.ErrDateNotFound, http.StatusNotFound, "date_not_found", "No data for the requested date"},
	{quotes.ErrEmptyHistory, http.StatusNotFound, "empty_history", "Symbol has no price history"},
	{quotes.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "Upstream rate limit exceeded"},
	{quotes.ErrMalformedData, http.StatusBadGateway, "malformed_data", "Upstream returned malformed data"},
	{quotes.ErrProvider, http.StatusBadGateway, "provider_error", "Upstream provider error"},
	{quotes.ErrNetwork, http.StatusGatewayTimeout, "network_error", "Upstream unreachable"},
}

// StatusFor maps err to an HTTP status, a machine readable code and a
// message. Errors outside the quote layer map to 500, except context
// deadline errors which map to 504.
func StatusFor(err error) (status int, code, message string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.code, m.message
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout", "Request timed out"
	}
	return http.StatusInternalServerError, codeInternal, "Internal server error"
}

// ErrorHandler renders the last error attached with c.Error as an
// ErrorResponse, unless a response has already been written.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
//	...
//	if err != nil { _ = c.Error(err); return }
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	status, code, message := StatusFor(err)
	AbortWithError(c, status, code, message, err)
}

// AbortWithError stops the chain and writes an ErrorResponse with the given
// status and code. err may be nil.
func AbortWithError(c *gin.Context, status int, code, message string, err error) {
	resp := dto.NewErrorResponse(message, err)
	resp.Code = code
	c.AbortWithStatusJSON(status, resp)
}
