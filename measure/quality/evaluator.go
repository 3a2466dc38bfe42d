package quality

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Evaluator averages quality metrics over batches of clean/enhanced pairs.
//
// SNR and SI-SDR are computed for every pair. PESQ is computed when requested
// and available; STOI when requested. A failure in a delegated metric never
// aborts the batch: the outcome is resolved by the metric's [FailurePolicy].
// Metrics that end up with no values are omitted from the result.
type Evaluator struct {
	cfg        EvaluatorConfig
	capability *Capability
}

// NewEvaluator returns an Evaluator backed by capability. A nil capability
// selects [DefaultCapability].
func NewEvaluator(capability *Capability, opts ...EvaluatorOption) *Evaluator {
	if capability == nil {
		capability = DefaultCapability()
	}

	return &Evaluator{
		cfg:        ApplyEvaluatorOptions(opts...),
		capability: capability,
	}
}

// Config returns the effective configuration.
func (e *Evaluator) Config() EvaluatorConfig {
	return e.cfg
}

// EvaluateBatch averages metrics over a batch using the process-wide
// capability. clean and enhanced may each be a single signal (rank 1) or a
// batch (rank 2); a single signal is treated as a batch of one.
func EvaluateBatch(clean, enhanced Tensor, sampleRate int, computePESQ, computeSTOI bool) (Result, error) {
	e := NewEvaluator(DefaultCapability(),
		WithSampleRate(sampleRate),
		WithPESQ(computePESQ),
		WithSTOI(computeSTOI),
	)

	return e.EvaluateTensors(clean, enhanced)
}

// EvaluateTensors averages metrics over tensor-shaped input. A rank-1 tensor
// is promoted to a batch of one.
func (e *Evaluator) EvaluateTensors(clean, enhanced Tensor) (Result, error) {
	cleanRows, err := clean.Rows()
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	enhancedRows, err := enhanced.Rows()
	if err != nil {
		return nil, fmt.Errorf("enhanced: %w", err)
	}

	return e.Evaluate(cleanRows, enhancedRows)
}

// EvaluatePair averages metrics over the batch holding the single pair.
func (e *Evaluator) EvaluatePair(clean, enhanced []float64) (Result, error) {
	return e.Evaluate([][]float64{clean}, [][]float64{enhanced})
}

// Evaluate averages metrics over clean[i]/enhanced[i] pairs.
// It fails only when the batch sizes differ.
func (e *Evaluator) Evaluate(clean, enhanced [][]float64) (Result, error) {
	report, err := e.Report(clean, enhanced)
	if err != nil {
		return nil, err
	}

	return report.Means, nil
}

// Report evaluates the batch like [Evaluator.Evaluate] and also returns the
// sample and failure counts behind each mean.
func (e *Evaluator) Report(clean, enhanced [][]float64) (Report, error) {
	if len(clean) != len(enhanced) {
		return Report{}, fmt.Errorf("%w: %d clean, %d enhanced", ErrBatchSizeMismatch, len(clean), len(enhanced))
	}

	start := time.Now()
	plan := e.plan()

	scores := make([]pairScores, len(clean))
	e.forEach(len(clean), func(i int) {
		scores[i] = e.scorePair(i, clean[i], enhanced[i], plan)
	})

	report := e.reduce(scores, plan)
	e.cfg.Observer.ObserveBatch(len(clean), time.Since(start))

	return report, nil
}

// metricPlan records which metrics a batch computes.
type metricPlan struct {
	pesq bool
	stoi bool
}

func (e *Evaluator) plan() metricPlan {
	p := metricPlan{stoi: e.cfg.ComputeSTOI}

	if e.cfg.ComputePESQ {
		if e.capability.PESQAvailable() {
			p.pesq = true
		} else {
			e.capability.WarnPESQUnavailable()
		}
	}

	return p
}

type pairScores struct {
	snr   float64
	sisdr float64
	pesq  Outcome
	stoi  Outcome
}

func (e *Evaluator) scorePair(index int, clean, enhanced []float64, plan metricPlan) pairScores {
	s := pairScores{
		snr:   SNR(clean, enhanced),
		sisdr: SISDR(clean, enhanced),
	}

	if plan.pesq {
		s.pesq = e.capability.PESQ(clean, enhanced, e.cfg.SampleRate, e.cfg.PESQMode)
		e.observe(index, MetricPESQ, s.pesq)
	}

	if plan.stoi {
		s.stoi = e.capability.STOI(clean, enhanced, e.cfg.SampleRate, e.cfg.ExtendedSTOI)
		e.observe(index, MetricSTOI, s.stoi)
	}

	return s
}

func (e *Evaluator) observe(index int, metric Metric, o Outcome) {
	e.cfg.Observer.ObserveOutcome(metric, o.Status)

	if !o.OK() {
		e.cfg.Logger.Debug("delegated metric produced no score",
			zap.Int("index", index),
			zap.String("metric", string(metric)),
			zap.Stringer("status", o.Status),
			zap.Error(o.Err),
		)
	}
}

// forEach calls fn for 0..n-1, concurrently when more than one worker is
// configured. fn must only write to its own index.
func (e *Evaluator) forEach(n int, fn func(i int)) {
	if e.cfg.Workers <= 1 || n < 2 {
		for i := range n {
			fn(i)
		}

		return
	}

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)

	for i := range n {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}

	_ = g.Wait()
}

func (e *Evaluator) reduce(scores []pairScores, plan metricPlan) Report {
	acc := map[Metric][]float64{
		MetricSNR:   make([]float64, 0, len(scores)),
		MetricSISDR: make([]float64, 0, len(scores)),
	}
	failures := map[Metric]int{}

	if plan.pesq {
		acc[MetricPESQ] = make([]float64, 0, len(scores))
		failures[MetricPESQ] = 0
	}

	if plan.stoi {
		acc[MetricSTOI] = make([]float64, 0, len(scores))
		failures[MetricSTOI] = 0
	}

	collect := func(m Metric, o Outcome, policy FailurePolicy) {
		if !o.OK() {
			failures[m]++
		}

		if v, ok := o.Contribution(policy); ok {
			acc[m] = append(acc[m], v)
		}
	}

	for _, s := range scores {
		acc[MetricSNR] = append(acc[MetricSNR], s.snr)
		acc[MetricSISDR] = append(acc[MetricSISDR], s.sisdr)

		if plan.pesq {
			collect(MetricPESQ, s.pesq, e.cfg.PESQPolicy)
		}

		if plan.stoi {
			collect(MetricSTOI, s.stoi, e.cfg.STOIPolicy)
		}
	}

	report := Report{
		Means:     Result{},
		Samples:   make(map[Metric]int, len(acc)),
		Failures:  failures,
		BatchSize: len(scores),
	}

	for m, values := range acc {
		report.Samples[m] = len(values)
		if len(values) > 0 {
			report.Means[m] = mean(values)
		}
	}

	return report
}

// mean sums in index order so that sequential and concurrent runs agree bit for bit.
func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
