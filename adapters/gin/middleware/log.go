package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/abhissng/relay/adapters/log"
	"github.com/abhissng/relay/utils/constant"
	"github.com/abhissng/relay/utils/types"
	"github.com/gin-gonic/gin"
)

// maxLoggedBody caps how much of a request or response body is logged.
const maxLoggedBody = 4096

// GinRequestLogger logs every request and its response. Bodies are logged
// only when logBodies is set.
func GinRequestLogger(logger *log.Log, logBodies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		fields := []types.Field{
			log.String("method", c.Request.Method),
			log.String("url", c.Request.RequestURI),
			log.String("client_ip", c.ClientIP()),
			log.String(constant.RequestID, GetRequestID(c)),
			log.String(constant.CorrelationID, GetCorrelationID(c).String()),
			log.String("user_agent", c.Request.UserAgent()),
		}
		if logBodies && c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			// Restore the io.ReadCloser to its original state
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			fields = append(fields, log.String("body", truncate(bodyBytes)))
		}
		logger.Debug(constant.RequestReceived, fields...)

		var responseBodyBuffer bytes.Buffer
		if logBodies {
			c.Writer = &responseWriter{ResponseWriter: c.Writer, body: &responseBodyBuffer}
		}

		c.Next()

		fields = []types.Field{
			log.String("method", c.Request.Method),
			log.String("path", c.FullPath()),
			log.Int("status_code", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String(constant.RequestID, GetRequestID(c)),
			log.String(constant.CorrelationID, GetCorrelationID(c).String()),
		}
		if logBodies {
			fields = append(fields, log.String("response_body", truncate(responseBodyBuffer.Bytes())))
		}
		logger.Info(constant.ResponseWritten, fields...)
	}
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}

// responseWriter is a custom implementation of gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write writes the response body
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// WriteString writes the response body
func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
