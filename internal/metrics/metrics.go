// Package metrics exposes Prometheus collectors for action and test execution.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexisbeaulieu97/citrine/internal/model"
)

const namespace = "citrine"

// Metrics records action and test outcomes. It implements testcontext.ActionListener so it
// can be registered on every test context.
//
// Metrics exposed:
//
//	citrine_actions_total{action,status}        counter
//	citrine_action_duration_seconds{action}     histogram
//	citrine_actions_inflight                    gauge
//	citrine_tests_total{status}                 counter
//	citrine_test_duration_seconds               histogram
type Metrics struct {
	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	inflight       prometheus.Gauge
	testsTotal     *prometheus.CounterVec
	testDuration   prometheus.Histogram
}

// New registers the collectors with registry, or the default registerer when nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Number of executed test actions by outcome",
		}, []string{"action", "status"}),
		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Test action execution time",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"action"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actions_inflight",
			Help:      "Number of test actions currently executing",
		}),
		testsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Number of finished test cases by outcome",
		}, []string{"status"}),
		testDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "test_duration_seconds",
			Help:      "Test case execution time",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// ActionStarted implements testcontext.ActionListener.
func (m *Metrics) ActionStarted(ctx context.Context, _ string) context.Context {
	m.inflight.Inc()
	return ctx
}

// ActionFinished implements testcontext.ActionListener.
func (m *Metrics) ActionFinished(_ context.Context, name string, err error, duration time.Duration) {
	m.inflight.Dec()
	status := string(model.StatusSuccess)
	if err != nil {
		status = string(model.StatusFailed)
	}
	m.actionsTotal.WithLabelValues(name, status).Inc()
	m.actionDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// ObserveTest records a finished test case. Skipped tests are counted without a duration.
func (m *Metrics) ObserveTest(result model.TestResult) {
	m.testsTotal.WithLabelValues(string(result.Status)).Inc()
	if result.Status != model.StatusSkipped {
		m.testDuration.Observe(result.Duration.Seconds())
	}
}
