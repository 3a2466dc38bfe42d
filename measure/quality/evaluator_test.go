package quality

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwbudde/algo-speechmetrics/internal/testutil"
)

func failingPESQ(calls *atomic.Int32) PESQFunc {
	return func(int, []float64, []float64, Mode) (float64, error) {
		if calls != nil {
			calls.Add(1)
		}
		return 0, errors.New("pesq: buffer too short")
	}
}

func TestEvaluateIdentityPairWithoutDelegates(t *testing.T) {
	e := NewEvaluator(NewCapability(), WithPESQ(false), WithSTOI(false))

	res, err := e.Evaluate([][]float64{{1, -1, 1, -1}}, [][]float64{{1, -1, 1, -1}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if keys := res.Keys(); len(keys) != 2 || keys[0] != MetricSNR || keys[1] != MetricSISDR {
		t.Fatalf("keys = %v, want [snr si_sdr]", keys)
	}
	for _, m := range []Metric{MetricSNR, MetricSISDR} {
		if v, _ := res.Get(m); v < 86 {
			t.Fatalf("%s = %v, want >= 86 dB", m, v)
		}
	}
}

func TestEvaluatePESQUnavailableDegradesGracefully(t *testing.T) {
	logger, logs := observedLogger()
	c := NewCapability(WithLogger(logger), WithSTOIScorer(constantSTOI(0.8)))
	e := NewEvaluator(c, WithPESQ(true), WithSTOI(true))

	clean, enhanced := testutil.NoisyBatch(3, 400, 0.05)

	for range 3 {
		res, err := e.Evaluate(clean, enhanced)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if res.Has(MetricPESQ) {
			t.Fatalf("result %v contains pesq", res)
		}
		for _, m := range []Metric{MetricSNR, MetricSISDR, MetricSTOI} {
			if !res.Has(m) {
				t.Fatalf("result %v lacks %s", res, m)
			}
		}
	}

	if n := logs.FilterMessage(pesqWarning).Len(); n != 1 {
		t.Fatalf("warning logged %d times across batches, want 1", n)
	}
}

func TestEvaluatePESQFailingEverywhereIsOmitted(t *testing.T) {
	var calls atomic.Int32
	c := NewCapability(WithPESQScorer(failingPESQ(&calls)))
	e := NewEvaluator(c, WithSTOI(false))

	clean, enhanced := testutil.NoisyBatch(4, 256, 0.1)

	rep, err := e.Report(clean, enhanced)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if calls.Load() != 4 {
		t.Fatalf("pesq calls = %d, want 4", calls.Load())
	}
	if rep.Means.Has(MetricPESQ) {
		t.Fatalf("means %v contain pesq, want it omitted", rep.Means)
	}
	if rep.Failures[MetricPESQ] != 4 || rep.Samples[MetricPESQ] != 0 {
		t.Fatalf("pesq failures/samples = %d/%d, want 4/0", rep.Failures[MetricPESQ], rep.Samples[MetricPESQ])
	}
}

func TestEvaluatePESQPartialFailureShrinksSampleCount(t *testing.T) {
	var calls atomic.Int32
	c := NewCapability(WithPESQScorer(PESQFunc(func(int, []float64, []float64, Mode) (float64, error) {
		if calls.Add(1)%2 == 0 {
			return 0, errors.New("pesq: silent reference")
		}
		return 3.0, nil
	})))
	e := NewEvaluator(c, WithSTOI(false))

	clean, enhanced := testutil.NoisyBatch(4, 256, 0.1)

	rep, err := e.Report(clean, enhanced)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	testutil.RequireNearlyEqual(t, "pesq mean", rep.Means[MetricPESQ], 3.0, 0)
	if rep.Samples[MetricPESQ] != 2 || rep.Failures[MetricPESQ] != 2 {
		t.Fatalf("pesq samples/failures = %d/%d, want 2/2", rep.Samples[MetricPESQ], rep.Failures[MetricPESQ])
	}
}

func TestEvaluateSTOIFailureCountsAsZero(t *testing.T) {
	var calls atomic.Int32
	c := NewCapability(WithSTOIScorer(STOIFunc(func([]float64, []float64, int, bool) (float64, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("stoi: not enough frames")
		}
		return 0.9, nil
	})))
	e := NewEvaluator(c, WithPESQ(false))

	clean, enhanced := testutil.NoisyBatch(3, 256, 0.1)

	rep, err := e.Report(clean, enhanced)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	testutil.RequireNearlyEqual(t, "stoi mean", rep.Means[MetricSTOI], 0.6, 1e-12)
	if rep.Samples[MetricSTOI] != 3 || rep.Failures[MetricSTOI] != 1 {
		t.Fatalf("stoi samples/failures = %d/%d, want 3/1", rep.Samples[MetricSTOI], rep.Failures[MetricSTOI])
	}
}

func TestEvaluateWithoutSTOIScorerReportsZero(t *testing.T) {
	e := NewEvaluator(NewCapability(), WithPESQ(false))

	res, err := e.EvaluatePair([]float64{1, 2, 3}, []float64{1, 2, 2})
	if err != nil {
		t.Fatalf("EvaluatePair: %v", err)
	}

	if v, ok := res.Get(MetricSTOI); !ok || v != 0 {
		t.Fatalf("stoi = %v, %v, want 0, true", v, ok)
	}
}

func TestEvaluatePolicyOverrides(t *testing.T) {
	c := NewCapability(
		WithPESQScorer(failingPESQ(nil)),
		WithSTOIScorer(STOIFunc(func([]float64, []float64, int, bool) (float64, error) {
			return 0, errors.New("stoi: failure")
		})),
	)
	e := NewEvaluator(c, WithPESQPolicy(PolicyZero), WithSTOIPolicy(PolicyExclude))

	res, err := e.EvaluatePair([]float64{1, 2, 3}, []float64{1, 2, 2})
	if err != nil {
		t.Fatalf("EvaluatePair: %v", err)
	}

	if v, ok := res.Get(MetricPESQ); !ok || v != 0 {
		t.Fatalf("pesq = %v, %v, want 0, true under zero policy", v, ok)
	}
	if res.Has(MetricSTOI) {
		t.Fatalf("result %v contains stoi under exclude policy", res)
	}
}

func TestEvaluateSkipsUnrequestedMetrics(t *testing.T) {
	var pesqCalls atomic.Int32
	c := NewCapability(
		WithPESQScorer(PESQFunc(func(int, []float64, []float64, Mode) (float64, error) {
			pesqCalls.Add(1)
			return 2, nil
		})),
		WithSTOIScorer(constantSTOI(0.5)),
	)

	res, err := NewEvaluator(c, WithPESQ(false), WithSTOI(false)).EvaluatePair([]float64{1, 0}, []float64{1, 0})
	if err != nil {
		t.Fatalf("EvaluatePair: %v", err)
	}

	if pesqCalls.Load() != 0 {
		t.Fatalf("pesq called %d times, want 0", pesqCalls.Load())
	}
	if len(res) != 2 {
		t.Fatalf("result = %v, want snr and si_sdr only", res)
	}
}

func TestEvaluatePassesConfigToScorers(t *testing.T) {
	var mu sync.Mutex
	var pesqRate, stoiRate int
	var mode Mode
	var extended bool

	c := NewCapability(
		WithPESQScorer(PESQFunc(func(sr int, _, _ []float64, m Mode) (float64, error) {
			mu.Lock()
			defer mu.Unlock()
			pesqRate, mode = sr, m
			return 1.5, nil
		})),
		WithSTOIScorer(STOIFunc(func(_, _ []float64, sr int, ext bool) (float64, error) {
			mu.Lock()
			defer mu.Unlock()
			stoiRate, extended = sr, ext
			return 0.7, nil
		})),
	)
	e := NewEvaluator(c, WithSampleRate(8000), WithPESQMode(ModeNarrowband), WithExtendedSTOI(true))

	res, err := e.EvaluatePair([]float64{1, 2}, []float64{1, 2})
	if err != nil {
		t.Fatalf("EvaluatePair: %v", err)
	}

	if pesqRate != 8000 || stoiRate != 8000 || mode != ModeNarrowband || !extended {
		t.Fatalf("scorers got pesq rate %d, stoi rate %d, mode %q, extended %v", pesqRate, stoiRate, mode, extended)
	}
	testutil.RequireScoresEqual(t, Result{MetricPESQ: res[MetricPESQ], MetricSTOI: res[MetricSTOI]},
		Result{MetricPESQ: 1.5, MetricSTOI: 0.7}, 0)
}

func TestEvaluateBatchSizeMismatch(t *testing.T) {
	e := NewEvaluator(NewCapability(), WithPESQ(false), WithSTOI(false))

	_, err := e.Evaluate([][]float64{{1}, {2}}, [][]float64{{1}})
	if !errors.Is(err, ErrBatchSizeMismatch) {
		t.Fatalf("err = %v, want ErrBatchSizeMismatch", err)
	}
}

func TestEvaluateEmptyBatch(t *testing.T) {
	rep, err := NewEvaluator(NewCapability(), WithPESQ(false)).Report(nil, nil)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if len(rep.Means) != 0 || rep.BatchSize != 0 {
		t.Fatalf("report = %+v, want no means", rep)
	}
}

func TestEvaluatePairMatchesBatchOfOne(t *testing.T) {
	clean := testutil.DeterministicSine(440, 16000, 0.5, 800)
	enhanced := testutil.Mix(clean, testutil.DeterministicNoise(5, 0.05, len(clean)))

	e := NewEvaluator(NewCapability(WithSTOIScorer(constantSTOI(0.75))), WithPESQ(false))

	single, err := e.EvaluateTensors(Vector(clean), Vector(enhanced))
	if err != nil {
		t.Fatalf("EvaluateTensors(single): %v", err)
	}

	batch, err := e.EvaluateTensors(NewTensor(clean, 1, len(clean)), NewTensor(enhanced, 1, len(enhanced)))
	if err != nil {
		t.Fatalf("EvaluateTensors(batch): %v", err)
	}

	testutil.RequireScoresEqual(t, single, batch, 0)
}

func TestEvaluateMeansAcrossBatch(t *testing.T) {
	clean, enhanced := testutil.NoisyBatch(3, 512, 0.1)
	e := NewEvaluator(NewCapability(), WithPESQ(false), WithSTOI(false))

	res, err := e.Evaluate(clean, enhanced)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var snr, sisdr float64
	for i := range clean {
		snr += SNR(clean[i], enhanced[i])
		sisdr += SISDR(clean[i], enhanced[i])
	}

	testutil.RequireNearlyEqual(t, "snr mean", res[MetricSNR], snr/3, 1e-12)
	testutil.RequireNearlyEqual(t, "si_sdr mean", res[MetricSISDR], sisdr/3, 1e-12)
}

func TestEvaluateTensorsRejectsMalformedInput(t *testing.T) {
	e := NewEvaluator(NewCapability(), WithPESQ(false), WithSTOI(false))

	_, err := e.EvaluateTensors(NewTensor([]float64{1, 2, 3}, 2, 2), Vector([]float64{1, 2, 3}))
	if !errors.Is(err, ErrMalformedTensor) {
		t.Fatalf("err = %v, want ErrMalformedTensor", err)
	}

	_, err = e.EvaluateTensors(NewTensor(make([]float64, 8), 2, 4), Vector(make([]float64, 4)))
	if !errors.Is(err, ErrBatchSizeMismatch) {
		t.Fatalf("err = %v, want ErrBatchSizeMismatch", err)
	}
}

func TestEvaluateSilentDegradationPropagatesNegativeInfinity(t *testing.T) {
	e := NewEvaluator(NewCapability(), WithPESQ(false), WithSTOI(false))

	res, err := e.EvaluatePair([]float64{1, 1, 1, 1}, []float64{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("EvaluatePair: %v", err)
	}

	if !math.IsInf(res[MetricSISDR], -1) {
		t.Fatalf("si_sdr = %v, want -Inf", res[MetricSISDR])
	}
	if res[MetricSNR] >= 0 {
		t.Fatalf("snr = %v, want below 0 dB", res[MetricSNR])
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[Metric]map[Status]int
	batches  []int
}

func (r *recordingObserver) ObserveOutcome(m Metric, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[Metric]map[Status]int{}
	}
	if r.outcomes[m] == nil {
		r.outcomes[m] = map[Status]int{}
	}
	r.outcomes[m][s]++
}

func (r *recordingObserver) ObserveBatch(size int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, size)
}

func TestEvaluateNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	c := NewCapability(WithPESQScorer(failingPESQ(nil)), WithSTOIScorer(constantSTOI(0.5)))
	e := NewEvaluator(c, WithObserver(obs), WithWorkers(2))

	clean, enhanced := testutil.NoisyBatch(5, 128, 0.1)
	if _, err := e.Evaluate(clean, enhanced); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := obs.outcomes[MetricPESQ][StatusFailed]; got != 5 {
		t.Fatalf("pesq failed outcomes = %d, want 5", got)
	}
	if got := obs.outcomes[MetricSTOI][StatusOK]; got != 5 {
		t.Fatalf("stoi ok outcomes = %d, want 5", got)
	}
	if len(obs.batches) != 1 || obs.batches[0] != 5 {
		t.Fatalf("batches = %v, want [5]", obs.batches)
	}
}

func TestEvaluatorDefaults(t *testing.T) {
	cfg := NewEvaluator(NewCapability()).Config()

	if cfg.SampleRate != 16000 || !cfg.ComputePESQ || !cfg.ComputeSTOI {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PESQPolicy != PolicyExclude || cfg.STOIPolicy != PolicyZero {
		t.Fatalf("policies = %q/%q, want exclude/zero", cfg.PESQPolicy, cfg.STOIPolicy)
	}
	if cfg.PESQMode != ModeWideband || cfg.Workers != 1 {
		t.Fatalf("mode/workers = %q/%d, want wb/1", cfg.PESQMode, cfg.Workers)
	}
}

func TestEvaluatorIgnoresInvalidOptionValues(t *testing.T) {
	cfg := ApplyEvaluatorOptions(
		WithPESQMode("ultra"),
		WithPESQPolicy("maybe"),
		WithWorkers(0),
		nil,
	)

	if cfg.PESQMode != ModeWideband ||
		cfg.PESQPolicy != PolicyExclude || cfg.Workers != 1 {
		t.Fatalf("invalid options changed config: %+v", cfg)
	}
}

func TestResultString(t *testing.T) {
	r := Result{MetricSTOI: 0.912, MetricSNR: 12.3456, MetricSISDR: 11.0}
	if got, want := r.String(), "snr=12.35 si_sdr=11.00 stoi=0.91"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestEvaluatorPassesUnsetSampleRateToScorers(t *testing.T) {
	var rates []int

	c := NewCapability(WithSTOIScorer(STOIFunc(func(_, _ []float64, sr int, _ bool) (float64, error) {
		rates = append(rates, sr)
		if sr <= 0 {
			return 0, errors.New("sample rate must be positive")
		}
		return 0.9, nil
	})))

	e := NewEvaluator(c, WithSampleRate(0), WithPESQ(false), WithSTOIPolicy(PolicyExclude))
	if got := e.Config().SampleRate; got != 0 {
		t.Fatalf("config sample rate = %d, want 0", got)
	}

	clean := testutil.Alternating(1, 8)
	rep, err := e.Report([][]float64{clean}, [][]float64{testutil.Scaled(clean, 0.5)})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if len(rates) != 1 || rates[0] != 0 {
		t.Fatalf("scorer sample rates = %v, want [0]", rates)
	}
	if rep.Means.Has(MetricSTOI) || rep.Failures[MetricSTOI] != 1 {
		t.Fatalf("stoi = %+v, want one failure and no mean", rep)
	}
	if !rep.Means.Has(MetricSNR) {
		t.Fatalf("snr missing from %v", rep.Means)
	}
}
