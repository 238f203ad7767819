package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gucorpling/squeezer/pkg/domain"
)

const namespace = "squeezer"

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	PassDuration     *prometheus.HistogramVec
	PassFailures     *prometheus.CounterVec
	Documents        *prometheus.CounterVec
	DocumentDuration prometheus.Histogram
	NodesDelta       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of rewriting passes",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"pass"},
		),
		PassFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pass_failures_total",
				Help:      "Number of passes that aborted a document",
			},
			[]string{"pass"},
		),
		Documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Documents processed, by outcome",
			},
			[]string{"status"},
		),
		DocumentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_duration_seconds",
				Help:      "Wall time of a full document run",
			},
		),
		NodesDelta: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_changed_total",
				Help:      "Absolute node count change per kind across successful runs",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.PassDuration, m.PassFailures, m.Documents, m.DocumentDuration, m.NodesDelta} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPassEnd: func(_ context.Context, e *domain.PassEvent) {
			m.PassDuration.WithLabelValues(string(e.Pass)).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.PassFailures.WithLabelValues(string(e.Pass)).Inc()
			}
		},
		OnDocumentDone: func(_ context.Context, e *domain.DocumentEvent) {
			m.DocumentDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.Documents.WithLabelValues("failed").Inc()
				return
			}
			m.Documents.WithLabelValues("ok").Inc()
			for kind, d := range e.Delta.Nodes {
				if d < 0 {
					d = -d
				}
				m.NodesDelta.WithLabelValues(kind).Add(float64(d))
			}
		},
	}
}
