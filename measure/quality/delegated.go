package quality

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-speechmetrics/internal/signal"
)

// PESQ scores enhanced against clean with the PESQ scorer.
//
// When PESQ is unavailable the one-time warning fires and the outcome is
// [StatusUnavailable]. Otherwise both signals are truncated to their common
// length and passed to the scorer; an error or panic from the scorer is
// logged and returned as [StatusFailed]. sampleRate is passed to the scorer
// unchanged.
func (c *Capability) PESQ(clean, enhanced []float64, sampleRate int, mode Mode) Outcome {
	if !c.PESQAvailable() {
		c.WarnPESQUnavailable()
		return unavailable(c.PESQUnavailableReason())
	}

	clean, enhanced = signal.Truncate(clean, enhanced)

	score, err := callScorer(func() (float64, error) {
		return c.pesq.PESQ(sampleRate, clean, enhanced, mode)
	})
	if err != nil {
		c.logger.Warn("pesq scoring failed",
			zap.Int("samples", len(clean)),
			zap.Int("sample_rate", sampleRate),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)

		return failed(err)
	}

	return scored(score)
}

// STOI scores enhanced against clean with the STOI scorer.
//
// Both signals are truncated to their common length. A missing scorer, a
// scorer error, or a scorer panic is logged and returned as [StatusFailed].
func (c *Capability) STOI(clean, enhanced []float64, sampleRate int, extended bool) Outcome {
	clean, enhanced = signal.Truncate(clean, enhanced)

	var (
		score float64
		err   error
	)

	if c.stoi == nil {
		err = ErrSTOIUnavailable
	} else {
		score, err = callScorer(func() (float64, error) {
			return c.stoi.STOI(clean, enhanced, sampleRate, extended)
		})
	}

	if err != nil {
		c.logger.Warn("stoi scoring failed",
			zap.Int("samples", len(clean)),
			zap.Int("sample_rate", sampleRate),
			zap.Bool("extended", extended),
			zap.Error(err),
		)

		return failed(err)
	}

	return scored(score)
}

func callScorer(fn func() (float64, error)) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("%w: %v", ErrScorerPanic, r)
		}
	}()

	return fn()
}
