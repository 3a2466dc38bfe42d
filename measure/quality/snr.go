package quality

import "github.com/cwbudde/algo-speechmetrics/internal/signal"

// Epsilon is added to every energy denominator so that a silent residual
// yields a large finite ratio instead of a division by zero.
const Epsilon = 1e-8

// SNR returns the signal-to-noise ratio of enhanced against clean in dB:
//
//	10 * log10(sum(clean^2) / (sum((clean-enhanced)^2) + Epsilon))
//
// clean and enhanced are expected to have equal length; when they do not,
// only the common prefix is used for both energies.
func SNR(clean, enhanced []float64) float64 {
	clean, enhanced = signal.Truncate(clean, enhanced)

	noise := signal.Sub(clean, enhanced)
	cleanPower := signal.Energy(clean)
	noisePower := signal.Energy(noise) + Epsilon

	return signal.PowerRatioDB(cleanPower, noisePower)
}

// SISDR returns the scale-invariant signal-to-distortion ratio in dB.
//
// Both signals are truncated to their common length and made zero-mean. The
// enhanced signal is projected onto the clean one,
//
//	target = (<clean, enhanced> / (|clean|^2 + Epsilon)) * clean
//	residual = enhanced - target
//
// and the result is 10 * log10(|target|^2 / (|residual|^2 + Epsilon)).
// Rescaling enhanced by any positive gain leaves the result unchanged up to
// the Epsilon terms.
func SISDR(clean, enhanced []float64) float64 {
	clean, enhanced = signal.Truncate(clean, enhanced)
	clean = signal.Centered(clean)
	enhanced = signal.Centered(enhanced)

	alpha := signal.Dot(clean, enhanced) / (signal.Energy(clean) + Epsilon)
	target := signal.Scale(clean, alpha)
	residual := signal.Sub(enhanced, target)

	return signal.PowerRatioDB(signal.Energy(target), signal.Energy(residual)+Epsilon)
}
