// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts API requests by method, path and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demark_http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	// SolvesTotal counts perfect-foresight model solves
	SolvesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demark_consumer_solves_total",
		Help: "Total perfect-foresight consumer model solves",
	})

	// FREDRequests counts upstream FRED fetches by outcome
	FREDRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demark_fred_requests_total",
		Help: "Total FRED series fetches",
	}, []string{"outcome"})

	// AnalysisDuration tracks theory-comparison latency by kind
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "demark_analysis_duration_seconds",
		Help:    "Duration of theory comparison analyses",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

// Handler returns the /metrics endpoint handler
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
