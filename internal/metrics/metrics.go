// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts requests by method, matched route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musichub_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "musichub_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})

	// ReviewsSubmitted counts submit attempts.
	// Labels: "created", "conflict", "invalid", "error"
	ReviewsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musichub_reviews_submitted_total",
		Help: "Review submissions by outcome",
	}, []string{"result"})

	// LikeToggles counts toggle outcomes.
	// Labels: "liked", "unliked", "not_found", "error"
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musichub_like_toggles_total",
		Help: "Like toggles by outcome",
	}, []string{"result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "musichub_rate_limited_total",
		Help: "Write requests rejected by the rate limiter",
	})
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
