package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Alternating returns +amplitude, -amplitude, ... of the given length.
func Alternating(amplitude float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		if i%2 == 0 {
			out[i] = amplitude
		} else {
			out[i] = -amplitude
		}
	}
	return out
}

// Mix returns clean[i] + noise[i] over the length of clean.
// Missing noise samples count as silence.
func Mix(clean, noise []float64) []float64 {
	out := make([]float64, len(clean))
	for i := range clean {
		out[i] = clean[i]
		if i < len(noise) {
			out[i] += noise[i]
		}
	}
	return out
}

// Scaled returns x[i] * gain.
func Scaled(x []float64, gain float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * gain
	}
	return out
}

// NoisyBatch builds a batch of sine references and their noisy degradations.
// Row i uses a distinct frequency and noise seed so rows are not identical.
func NoisyBatch(rows, length int, noiseAmplitude float64) (clean, enhanced [][]float64) {
	clean = make([][]float64, rows)
	enhanced = make([][]float64, rows)
	for i := range rows {
		clean[i] = DeterministicSine(220*float64(i+1), 16000, 0.5, length)
		enhanced[i] = Mix(clean[i], DeterministicNoise(int64(i+1), noiseAmplitude, length))
	}
	return clean, enhanced
}
