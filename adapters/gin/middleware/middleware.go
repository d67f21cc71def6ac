package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/blame"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/random"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware generates a request id and keeps the caller's
// correlation id, creating one when the header is missing. Both are echoed
// back as response headers.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := random.GenerateUUIDString()

		correlationId := c.GetHeader(constant.CorrelationIDHeader)
		if correlationId == "" {
			correlationId = random.GenerateUUIDString()
		}

		c.Set(constant.RequestID, requestId)
		c.Set(constant.CorrelationID, correlationId)
		c.Header(constant.RequestIDHeader, requestId)
		c.Header(constant.CorrelationIDHeader, correlationId)

		c.Next()
	}
}

// RecoveryMiddleware turns a handler panic into a 500 envelope and logs the stack.
func RecoveryMiddleware(logger *log.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if exception := recover(); exception != nil {
				logger.Error(constant.HandlerPanic,
					log.Any("exception", exception),
					log.String("path", c.Request.URL.Path),
					log.String(constant.CorrelationID, GetCorrelationID(c).String()),
					log.String("stack", string(debug.Stack())),
				)
				AbortWithBlame(c, http.StatusInternalServerError, blame.InternalServerError(nil))
			}
		}()
		c.Next()
	}
}
