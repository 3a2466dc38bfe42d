package quality

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const pesqInstallHint = "install a P.862 scoring tool and register it with " +
	"quality.RegisterPESQProbe or quality.WithPESQProbe, " +
	"for example external.PESQProbe(external.Config{Command: \"pesq-score\"})"

// Capability holds the external scorers available to the delegated metrics.
//
// The PESQ probe runs at most once, on first demand, and its result never
// changes afterwards. The PESQ-unavailable warning is logged at most once per
// Capability. A Capability is safe for concurrent use.
type Capability struct {
	probe  PESQProbe
	stoi   STOIScorer
	logger *zap.Logger

	probeOnce sync.Once
	pesq      PESQScorer
	probeErr  error

	warnOnce sync.Once
	warned   atomic.Bool
}

// CapabilityOption mutates a Capability under construction.
type CapabilityOption func(*Capability)

// WithPESQProbe sets the probe used to load the PESQ scorer.
func WithPESQProbe(probe PESQProbe) CapabilityOption {
	return func(c *Capability) {
		c.probe = probe
	}
}

// WithPESQScorer makes s the PESQ scorer; the probe always succeeds.
func WithPESQScorer(s PESQScorer) CapabilityOption {
	return func(c *Capability) {
		if s == nil {
			c.probe = nil
			return
		}

		c.probe = func() (PESQScorer, error) { return s, nil }
	}
}

// WithSTOIScorer sets the STOI scorer.
func WithSTOIScorer(s STOIScorer) CapabilityOption {
	return func(c *Capability) {
		c.stoi = s
	}
}

// WithLogger sets the logger for warnings and scorer diagnostics.
func WithLogger(logger *zap.Logger) CapabilityOption {
	return func(c *Capability) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCapability returns a Capability configured by opts. Without a PESQ
// probe, PESQ is unavailable; without a STOI scorer, every STOI call fails.
func NewCapability(opts ...CapabilityOption) *Capability {
	c := &Capability{logger: zap.NewNop()}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// PESQAvailable reports whether the PESQ scorer could be loaded.
// The first call runs the probe.
func (c *Capability) PESQAvailable() bool {
	c.load()
	return c.pesq != nil
}

// PESQUnavailableReason returns why PESQ is unavailable, or nil when it is available.
func (c *Capability) PESQUnavailableReason() error {
	c.load()
	return c.probeErr
}

// WarnPESQUnavailable logs the PESQ-unavailable warning. Only the first
// call on a Capability logs; later calls do nothing.
func (c *Capability) WarnPESQUnavailable() {
	c.warnOnce.Do(func() {
		c.logger.Warn("pesq scorer is not available, pesq metrics will be omitted",
			zap.String("install", pesqInstallHint),
			zap.Strings("still_available", []string{string(MetricSNR), string(MetricSISDR), string(MetricSTOI)}),
			zap.Error(c.PESQUnavailableReason()),
		)
		c.warned.Store(true)
	})
}

// WarningShown reports whether the PESQ-unavailable warning has been logged.
func (c *Capability) WarningShown() bool {
	return c.warned.Load()
}

func (c *Capability) load() {
	c.probeOnce.Do(func() {
		if c.probe == nil {
			c.probeErr = ErrPESQUnavailable
			return
		}

		scorer, err := runProbe(c.probe)
		switch {
		case err != nil:
			c.probeErr = fmt.Errorf("%w: %w", ErrPESQUnavailable, err)
		case scorer == nil:
			c.probeErr = ErrPESQUnavailable
		default:
			c.pesq = scorer
		}
	})
}

func runProbe(probe PESQProbe) (scorer PESQScorer, err error) {
	defer func() {
		if r := recover(); r != nil {
			scorer, err = nil, fmt.Errorf("%w: %v", ErrScorerPanic, r)
		}
	}()

	return probe()
}
