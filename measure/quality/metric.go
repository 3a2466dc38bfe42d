package quality

import (
	"fmt"
	"strings"
)

// Metric names a quality metric. The values match the keys of a [Result].
type Metric string

const (
	MetricSNR   Metric = "snr"
	MetricSISDR Metric = "si_sdr"
	MetricPESQ  Metric = "pesq"
	MetricSTOI  Metric = "stoi"
)

// Metrics lists every metric in reporting order.
var Metrics = []Metric{MetricSNR, MetricSISDR, MetricPESQ, MetricSTOI}

// Result maps each metric that produced at least one value to its batch mean.
type Result map[Metric]float64

// Get returns the mean for m and whether it is present.
func (r Result) Get(m Metric) (float64, bool) {
	v, ok := r[m]
	return v, ok
}

// Has reports whether m is present.
func (r Result) Has(m Metric) bool {
	_, ok := r[m]
	return ok
}

// Keys returns the present metrics in reporting order.
func (r Result) Keys() []Metric {
	keys := make([]Metric, 0, len(r))
	for _, m := range Metrics {
		if _, ok := r[m]; ok {
			keys = append(keys, m)
		}
	}

	return keys
}

// String formats the result as "snr=12.31 si_sdr=11.87".
func (r Result) String() string {
	var sb strings.Builder

	for i, m := range r.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%s=%.2f", m, r[m])
	}

	return sb.String()
}

// Report is a [Result] together with the bookkeeping behind each mean.
type Report struct {
	// Means holds the per-metric averages.
	Means Result
	// Samples counts the values that entered each mean.
	Samples map[Metric]int
	// Failures counts delegated outcomes that were not [StatusOK].
	Failures map[Metric]int
	// BatchSize is the number of signal pairs evaluated.
	BatchSize int
}
