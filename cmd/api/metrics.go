package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quoteMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_mutations_total",
		Help: "The total number of committed quote mutations",
	}, []string{"op"})
	aggregationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregation_requests_total",
		Help: "The total number of served aggregation requests",
	}, []string{"policy"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_response_duration_seconds",
		Help: "Latency of requests in second.",
	}, []string{"path", "status"})
)

// metricsMiddleware labels by route pattern, not the raw path.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		httpDuration.
			WithLabelValues(pattern, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
