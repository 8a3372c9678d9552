// Package metrics exposes Prometheus collectors for the lottery monitor.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resolver"

// Error stages used as the "stage" label of resolver_block_errors_total.
const (
	StageRead   = "read"
	StageCommit = "commit"
	StageReveal = "reveal"
)

// Metrics holds the monitor collectors. A nil *Metrics records nothing.
type Metrics struct {
	blocks       prometheus.Counter
	commits      prometheus.Counter
	reveals      prometheus.Counter
	errors       *prometheus.CounterVec
	state        prometheus.Gauge
	pendingBlock prometheus.Gauge
	lastBlock    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_processed_total",
			Help:      "Blocks handled by the lottery monitor.",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Confirmed commit transactions.",
		}),
		reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_total",
			Help:      "Confirmed reveal transactions.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_errors_total",
			Help:      "Blocks whose handling failed, by stage.",
		}, []string{"stage"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Monitor state: 0 idle, 1 committed, 2 resolving.",
		}),
		pendingBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_commit_block",
			Help:      "Block of the pending commitment, 0 when none.",
		}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_block",
			Help:      "Last block number handled.",
		}),
	}

	for _, c := range []prometheus.Collector{m.blocks, m.commits, m.reveals, m.errors, m.state, m.pendingBlock, m.lastBlock} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// BlockProcessed records a handled block.
func (m *Metrics) BlockProcessed(number uint64) {
	if m == nil {
		return
	}
	m.blocks.Inc()
	m.lastBlock.Set(float64(number))
}

// Committed records a confirmed commit at block.
func (m *Metrics) Committed(block uint64) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.pendingBlock.Set(float64(block))
}

// Revealed records a confirmed reveal.
func (m *Metrics) Revealed() {
	if m == nil {
		return
	}
	m.reveals.Inc()
	m.pendingBlock.Set(0)
}

// Dropped records a commitment discarded without a reveal.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.pendingBlock.Set(0)
}

// BlockError records a failed block at stage.
func (m *Metrics) BlockError(stage string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(stage).Inc()
}

// SetState records the monitor state value.
func (m *Metrics) SetState(state int) {
	if m == nil {
		return
	}
	m.state.Set(float64(state))
}

// Serve exposes /metrics and /healthz on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", slog.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
