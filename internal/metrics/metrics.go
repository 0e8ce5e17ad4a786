// Package metrics exposes Prometheus instrumentation for the HTTP API, the
// question parser and the outbound clients.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"costa-assist/internal/model"
)

const namespace = "costa"

var (
	// httpRequestsTotal counts requests by route template, method and status.
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"route"})

	// parsedFieldsTotal counts which filter fields questions produce.
	// Labels: field (location, propertyType, minPrice, ...)
	parsedFieldsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "parser",
		Name:      "fields_total",
		Help:      "Filter fields extracted from questions",
	}, []string{"field"})

	emptyQuestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "parser",
		Name:      "empty_total",
		Help:      "Questions that produced no filters at all",
	})

	// llmCallsTotal counts Ollama calls by operation (chat, stream, embed) and status.
	llmCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "LLM calls by operation and status",
	}, []string{"operation", "status"})

	llmLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "latency_seconds",
		Help:      "LLM call latency by operation",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	propertyAPICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "property_api",
		Name:      "calls_total",
		Help:      "Property API calls by status",
	}, []string{"status"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route template.
// Unmatched routes are grouped under "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// RecordParsedFilters counts the fields present in an extracted filter record
func RecordParsedFilters(f *model.ParsedFilters) {
	if f == nil || f.IsEmpty() {
		emptyQuestionsTotal.Inc()
		return
	}
	for field, set := range map[string]bool{
		"location":     f.Location != nil,
		"propertyType": f.PropertyType != nil,
		"minPrice":     f.MinPrice != nil,
		"maxPrice":     f.MaxPrice != nil,
		"minBedrooms":  f.MinBedrooms != nil,
		"minBathrooms": f.MinBathrooms != nil,
		"limit":        f.Limit != nil,
		"intent":       f.Intent != nil,
	} {
		if set {
			parsedFieldsTotal.WithLabelValues(field).Inc()
		}
	}
}

// RecordLLMCall records the outcome and latency of one LLM call
func RecordLLMCall(operation string, err error, took time.Duration) {
	llmCallsTotal.WithLabelValues(operation, status(err)).Inc()
	llmLatencySeconds.WithLabelValues(operation).Observe(took.Seconds())
}

// RecordPropertyAPICall records the outcome of one property API search
func RecordPropertyAPICall(err error) {
	propertyAPICallsTotal.WithLabelValues(status(err)).Inc()
}

// RecordCacheLookup records a cache hit, miss or error
func RecordCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
