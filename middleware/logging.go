package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/chatwidget-api/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one structured line per request and propagates or
// assigns an X-Request-ID.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		c.Set("request_id", reqID)

		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"uri":         c.Request.URL.RequestURI(),
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"size":        c.Writer.Size(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
			"request_id":  reqID,
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("request", fields)
		case status >= 400:
			log.Warn("request", fields)
		default:
			log.Info("request", fields)
		}
	}
}
