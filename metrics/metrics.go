// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the payment ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sgps_http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sgps_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	paymentsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgps_payments_applied_total",
		Help: "Payments committed by the ledger operation.",
	})

	paymentsAmountCents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgps_payments_amount_cents_total",
		Help: "Total applied payment volume in cents.",
	})

	paymentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sgps_payments_rejected_total",
		Help: "Payments rejected by the ledger operation, by reason.",
	}, []string{"reason"})
)

// RequestMetrics is chi middleware recording request counts and latency.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// PaymentApplied records one committed payment of the given amount in cents.
func PaymentApplied(cents int64) {
	paymentsApplied.Inc()
	paymentsAmountCents.Add(float64(cents))
}

// PaymentRejected records one rejected payment with a taxonomy reason
// (validation, not_found, conflict, storage).
func PaymentRejected(reason string) {
	paymentsRejected.WithLabelValues(reason).Inc()
}
