package quality

import "go.uber.org/zap"

// EvaluatorConfig defines batch evaluation settings.
type EvaluatorConfig struct {
	// SampleRate is passed to the delegated scorers.
	SampleRate int `yaml:"sample_rate"`
	// ComputePESQ requests PESQ; it is skipped when PESQ is unavailable.
	ComputePESQ bool `yaml:"compute_pesq"`
	// ComputeSTOI requests STOI.
	ComputeSTOI bool `yaml:"compute_stoi"`
	// PESQMode selects wideband or narrowband PESQ.
	PESQMode Mode `yaml:"pesq_mode"`
	// ExtendedSTOI selects the extended STOI variant.
	ExtendedSTOI bool `yaml:"extended_stoi"`
	// PESQPolicy resolves failed PESQ outcomes.
	PESQPolicy FailurePolicy `yaml:"pesq_policy"`
	// STOIPolicy resolves failed STOI outcomes.
	STOIPolicy FailurePolicy `yaml:"stoi_policy"`
	// Workers bounds how many pairs are scored concurrently.
	Workers int `yaml:"workers"`

	Logger   *zap.Logger `yaml:"-"`
	Observer Observer    `yaml:"-"`
}

// EvaluatorOption mutates an EvaluatorConfig.
type EvaluatorOption func(*EvaluatorConfig)

// DefaultEvaluatorConfig returns the defaults: 16 kHz, PESQ and STOI
// requested, wideband PESQ, standard STOI, failed PESQ excluded from the mean,
// failed STOI counted as zero, sequential evaluation.
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		SampleRate:  DefaultSampleRate,
		ComputePESQ: true,
		ComputeSTOI: true,
		PESQMode:    ModeWideband,
		PESQPolicy:  PolicyExclude,
		STOIPolicy:  PolicyZero,
		Workers:     1,
	}
}

// WithSampleRate sets the sample rate passed to the scorers. The value is
// not checked here; a scorer that cannot handle it fails for every pair.
func WithSampleRate(sampleRate int) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.SampleRate = sampleRate
	}
}

// WithPESQ requests or suppresses PESQ.
func WithPESQ(enabled bool) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.ComputePESQ = enabled
	}
}

// WithSTOI requests or suppresses STOI.
func WithSTOI(enabled bool) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.ComputeSTOI = enabled
	}
}

// WithPESQMode sets the PESQ bandwidth mode.
func WithPESQMode(mode Mode) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		if mode.Valid() {
			cfg.PESQMode = mode
		}
	}
}

// WithExtendedSTOI selects the extended STOI variant.
func WithExtendedSTOI(extended bool) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.ExtendedSTOI = extended
	}
}

// WithPESQPolicy sets how failed PESQ outcomes enter the mean.
func WithPESQPolicy(policy FailurePolicy) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		if policy.Valid() {
			cfg.PESQPolicy = policy
		}
	}
}

// WithSTOIPolicy sets how failed STOI outcomes enter the mean.
func WithSTOIPolicy(policy FailurePolicy) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		if policy.Valid() {
			cfg.STOIPolicy = policy
		}
	}
}

// WithWorkers sets how many pairs are scored concurrently.
func WithWorkers(workers int) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		if workers > 0 {
			cfg.Workers = workers
		}
	}
}

// WithObserver sets the evaluation observer.
func WithObserver(o Observer) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.Observer = o
	}
}

// WithEvaluatorLogger sets the evaluator's logger.
func WithEvaluatorLogger(logger *zap.Logger) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		cfg.Logger = logger
	}
}

// WithConfig replaces the settings with src, typically the result of
// [ParseEvaluatorConfig]. A nil logger or observer in src keeps the current one.
func WithConfig(src EvaluatorConfig) EvaluatorOption {
	return func(cfg *EvaluatorConfig) {
		logger, observer := cfg.Logger, cfg.Observer
		*cfg = src

		if cfg.Logger == nil {
			cfg.Logger = logger
		}

		if cfg.Observer == nil {
			cfg.Observer = observer
		}
	}
}

// ApplyEvaluatorOptions applies zero or more options to the default config.
func ApplyEvaluatorOptions(opts ...EvaluatorOption) EvaluatorConfig {
	cfg := DefaultEvaluatorConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return normalizeConfig(cfg)
}

func normalizeConfig(cfg EvaluatorConfig) EvaluatorConfig {
	if !cfg.PESQMode.Valid() {
		cfg.PESQMode = ModeWideband
	}

	if !cfg.PESQPolicy.Valid() {
		cfg.PESQPolicy = PolicyExclude
	}

	if !cfg.STOIPolicy.Valid() {
		cfg.STOIPolicy = PolicyZero
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	return cfg
}
