package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's collectors.
type Metrics struct {
	registry *prometheus.Registry

	Actions          *prometheus.CounterVec
	Generations      *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	Evictions        prometheus.Counter
	ActiveSessions   prometheus.Gauge
	GroupOps         *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulecraft_actions_total",
				Help: "User actions applied, by action kind and outcome",
			},
			[]string{"action", "outcome"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulecraft_generations_total",
				Help: "Configuration generation attempts, by outcome",
			},
			[]string{"outcome"},
		),
		GenerateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rulecraft_generate_duration_seconds",
				Help:    "Time spent fetching, parsing and synthesizing a configuration",
				Buckets: prometheus.DefBuckets,
			},
		),
		Evictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rulecraft_session_evictions_total",
				Help: "Idle sessions evicted by the sweeper",
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rulecraft_sessions",
				Help: "Sessions remaining after the last sweep",
			},
		),
		GroupOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulecraft_group_ops_total",
				Help: "Category group mutations, by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
	m.registry.MustRegister(m.Actions, m.Generations, m.GenerateDuration, m.Evictions, m.ActiveSessions, m.GroupOps)
	return m
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	var pe *domain.PersistenceError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &pe):
		return "persistence_error"
	default:
		return "error"
	}
}

// Hooks returns lifecycle hooks recording into m and logging to logger.
// A nil logger disables logging.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return domain.LifecycleHooks{
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			m.Actions.WithLabelValues(e.Action, outcome(e.Err)).Inc()
			logger.Debug("action", "user_id", e.UserID, "action", e.Action, "err", e.Err)
		},
		OnGenerate: func(ctx context.Context, e *domain.GenerateEvent) {
			m.Generations.WithLabelValues(outcome(e.Err)).Inc()
			m.GenerateDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				logger.Warn("generate failed", "user_id", e.UserID, "err", e.Err)
				return
			}
			logger.Info("generate", "user_id", e.UserID, "nodes", e.Nodes, "categories", e.Categories, "duration", e.Duration)
		},
		OnSweep: func(ctx context.Context, e *domain.SweepEvent) {
			m.Evictions.Add(float64(e.Evicted))
			m.ActiveSessions.Set(float64(e.Remaining))
		},
		OnGroup: func(ctx context.Context, e *domain.GroupEvent) {
			m.GroupOps.WithLabelValues(e.Op, outcome(e.Err)).Inc()
			logger.Info("group", "group", e.Group, "op", e.Op, "err", e.Err)
		},
	}
}

// Merge returns hooks calling every non-nil callback of each input in order.
func Merge(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnAction = chain(out.OnAction, h.OnAction)
		out.OnGenerate = chain(out.OnGenerate, h.OnGenerate)
		out.OnSweep = chain(out.OnSweep, h.OnSweep)
		out.OnGroup = chain(out.OnGroup, h.OnGroup)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
