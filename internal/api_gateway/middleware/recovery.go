package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// Recovery middleware turns a handler panic into the same 500 envelope a system failure
// produces, so clients never see a dropped connection.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			correlationID := GetCorrelationID(c)
			logger.Error("Panic recovered",
				"error", r,
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"correlation_id", correlationID,
			)

			response := gin.H{
				"error": gin.H{
					"code":    strconv.Itoa(shared.CodeSystemError),
					"message": "An internal server error occurred",
				},
			}
			if correlationID != "" {
				response["correlation_id"] = correlationID
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, response)
		}()

		c.Next()
	}
}
