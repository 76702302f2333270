// Package metrics holds the Prometheus collectors shared by the bot runtime
// and serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/eventbot/core/logger"
)

const namespace = "eventbot"

var (
	// UpdatesTotal counts inbound updates by kind (message, callback, other).
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	// HandlerDuration observes handler latency by handler name and status.
	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Time spent handling one update.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"handler", "status"},
	)

	// UpstreamFetches counts event listing fetches by outcome.
	UpstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Event listing fetches by outcome (ok, empty, status, transport, decode).",
		},
		[]string{"outcome"},
	)

	// UpstreamDuration observes event listing request latency.
	UpstreamDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Latency of event listing requests.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// SendFailures counts outbound messages that failed after retries.
	SendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Outbound Telegram calls that failed after retries.",
		},
		[]string{"kind"},
	)

	// PendingSearches tracks users currently awaiting a search term.
	PendingSearches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_searches",
			Help:      "Users with an open search prompt.",
		},
	)

	// RateLimited counts updates dropped by the per-user rate limit.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Updates dropped by the per-user rate limit.",
		},
	)
)

// Serve exposes the default registry on addr until ctx is done.
func Serve(ctx context.Context, addr, path string) error {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info(ctx, "metrics", "metrics.listen",
		slog.String("listen", addr),
		slog.String("path", path),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
