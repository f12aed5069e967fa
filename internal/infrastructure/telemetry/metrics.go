// Package telemetry provides client-side metrics and tracing helpers.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricAPIRequestsTotal          = "lubex_api_requests_total"
	MetricAPIRequestDurationSeconds = "lubex_api_request_duration_seconds"
	MetricCheckoutTotal             = "lubex_checkout_total"
	MetricCartCorruptionTotal       = "lubex_cart_storage_corruption_total"
)

// Outcome labels for API requests and checkout attempts.
const (
	OutcomeOK         = "ok"
	OutcomeRejected   = "rejected"
	OutcomeNetwork    = "network"
	OutcomeValidation = "validation"
	OutcomeInFlight   = "in_flight"
)

// Metrics holds the storefront's collectors on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry        *prometheus.Registry
	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	checkouts       *prometheus.CounterVec
	cartCorruptions prometheus.Counter
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricAPIRequestsTotal,
			Help: "Backend API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricAPIRequestDurationSeconds,
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCheckoutTotal,
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		cartCorruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCartCorruptionTotal,
			Help: "Persisted carts discarded as unreadable",
		}),
	}
	m.registry.MustRegister(m.apiRequests, m.apiDuration, m.checkouts, m.cartCorruptions)
	return m
}

// ObserveRequest records one API call. A nil receiver is a no-op.
func (m *Metrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCheckout records one checkout attempt outcome
func (m *Metrics) ObserveCheckout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

// ObserveCartCorruption counts a discarded persisted cart
func (m *Metrics) ObserveCartCorruption() {
	if m == nil {
		return
	}
	m.cartCorruptions.Inc()
}

// Registry exposes the underlying registry, e.g. for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
