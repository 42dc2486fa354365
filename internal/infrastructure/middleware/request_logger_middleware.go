package middleware

import (
	"time"

	"moviehub/internal/infrastructure/monitoring"
	"moviehub/pkg/logger"
	"moviehub/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware assigns a request id (reusing an inbound
// X-Request-ID) and writes one http_request line per request.
func RequestLoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	cl := logger.NewContextLogger(base)

	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = utils.GenerateRequestID()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()

		cl.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Milliseconds())
	}
}

// MetricsMiddleware records request counts and latency per matched route.
func MetricsMiddleware(collector *monitoring.PrometheusCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
