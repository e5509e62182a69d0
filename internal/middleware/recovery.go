package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/quotepulse/internal/logger"
)

// RecoveryMiddleware recovers from panics in downstream handlers, logs the
// panic value with its stack and answers 500 with an ErrorResponse.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Error().
					Str("request_id", GetRequestID(c)).
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				AbortWithError(c, http.StatusInternalServerError, codeInternal, "Internal server error", fmt.Errorf("%v", r))
			}
		}()

		c.Next()
	}
}
