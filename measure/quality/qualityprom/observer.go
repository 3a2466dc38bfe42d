// Package qualityprom exports evaluation events as Prometheus metrics.
package qualityprom

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-speechmetrics/measure/quality"
)

const namespace = "speechmetrics"

// Observer implements quality.Observer on top of Prometheus collectors.
type Observer struct {
	outcomes      *prometheus.CounterVec
	batchSize     prometheus.Histogram
	batchDuration prometheus.Histogram
}

var _ quality.Observer = (*Observer)(nil)

// NewObserver creates the collectors and registers them with reg.
// A nil reg selects prometheus.DefaultRegisterer.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scorer_outcomes_total",
				Help:      "Delegated scorer calls by metric and outcome status",
			},
			[]string{"metric", "status"},
		),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of pairs per evaluated batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time spent evaluating one batch",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}),
	}

	for _, c := range []prometheus.Collector{o.outcomes, o.batchSize, o.batchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("qualityprom: register collector: %w", err)
		}
	}

	return o, nil
}

// ObserveOutcome counts one delegated scorer call.
func (o *Observer) ObserveOutcome(metric quality.Metric, status quality.Status) {
	o.outcomes.WithLabelValues(string(metric), status.String()).Inc()
}

// ObserveBatch records the size and wall time of one evaluated batch.
func (o *Observer) ObserveBatch(size int, elapsed time.Duration) {
	o.batchSize.Observe(float64(size))
	o.batchDuration.Observe(elapsed.Seconds())
}
