package quality

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultMu   sync.Mutex
	defaultOpts []CapabilityOption
	defaultCap  *Capability
)

// RegisterPESQProbe sets the probe of the process-wide capability.
// It must be called before the capability is first used.
func RegisterPESQProbe(probe PESQProbe) error {
	return configureDefault(WithPESQProbe(probe))
}

// RegisterSTOIScorer sets the STOI scorer of the process-wide capability.
// It must be called before the capability is first used.
func RegisterSTOIScorer(s STOIScorer) error {
	return configureDefault(WithSTOIScorer(s))
}

// SetLogger sets the logger of the process-wide capability.
// It must be called before the capability is first used.
func SetLogger(logger *zap.Logger) error {
	return configureDefault(WithLogger(logger))
}

func configureDefault(opt CapabilityOption) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultCap != nil {
		return ErrDefaultCapabilityBuilt
	}

	defaultOpts = append(defaultOpts, opt)

	return nil
}

// DefaultCapability returns the process-wide capability, building it from the
// registered options on first use.
func DefaultCapability() *Capability {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultCap == nil {
		defaultCap = NewCapability(defaultOpts...)
	}

	return defaultCap
}

// IsPESQAvailable reports whether the process-wide capability has a PESQ scorer.
func IsPESQAvailable() bool {
	return DefaultCapability().PESQAvailable()
}

// CalculatePESQ scores a pair with the process-wide capability.
// The boolean is false when no score was produced.
func CalculatePESQ(clean, enhanced []float64, sampleRate int, mode Mode) (float64, bool) {
	o := DefaultCapability().PESQ(clean, enhanced, sampleRate, mode)
	return o.Score, o.OK()
}

// CalculateSTOI scores a pair with the process-wide capability.
// Failures yield 0.
func CalculateSTOI(clean, enhanced []float64, sampleRate int, extended bool) float64 {
	v, _ := DefaultCapability().STOI(clean, enhanced, sampleRate, extended).Contribution(PolicyZero)
	return v
}
