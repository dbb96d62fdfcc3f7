package middleware

import (
	"strconv"
	"time"

	"github.com/alanlujan91/DemARK/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger creates a middleware that logs each request and records
// the request counter.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, c.FullPath(), strconv.Itoa(status)).Inc()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}

		if query != "" {
			fields = append(fields, zap.String("query", query))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= 500 {
			logger.Error("request failed", fields...)
		} else if status >= 400 {
			logger.Warn("client error", fields...)
		} else {
			logger.Info("request", fields...)
		}
	}
}
