package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quotepulse/internal/logger"
)

// RequestLogger logs one structured line per request once it completes:
// request id, method, route, symbol (when the route has one), status,
// latency and client ip. 5xx responses log at error level, 4xx at warn.
//
// Example log output:
//
//	{"level":"info","request_id":"123e4567-...","method":"GET","path":"/api/v1/quotes/AAPL/min","symbol":"AAPL","status":200,"latency_ms":3,"message":"http_request"}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		ev := logger.L().Info()
		switch {
		case status >= 500:
			ev = logger.L().Error()
		case status >= 400:
			ev = logger.L().Warn()
		}

		ev = ev.
			Str("request_id", GetRequestID(c)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP())
		if symbol := c.Param("symbol"); symbol != "" {
			ev = ev.Str("symbol", symbol)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.Last().Error())
		}
		ev.Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
