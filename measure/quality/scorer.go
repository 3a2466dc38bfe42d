package quality

// Mode selects the PESQ bandwidth.
type Mode string

const (
	// ModeWideband is P.862.2 wideband scoring, used with 16 kHz audio.
	ModeWideband Mode = "wb"
	// ModeNarrowband is P.862 narrowband scoring, used with 8 kHz audio.
	ModeNarrowband Mode = "nb"
)

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m == ModeWideband || m == ModeNarrowband
}

// DefaultSampleRate is the evaluator sample rate unless one is configured.
const DefaultSampleRate = 16000

// PESQScorer computes a P.862 score for a degraded signal against its reference.
// Valid scores lie roughly in [-0.5, 4.5]; they are passed through unchecked.
type PESQScorer interface {
	PESQ(sampleRate int, reference, degraded []float64, mode Mode) (float64, error)
}

// STOIScorer computes the (optionally extended) STOI intelligibility score,
// roughly in [0, 1].
type STOIScorer interface {
	STOI(reference, degraded []float64, sampleRate int, extended bool) (float64, error)
}

// PESQFunc adapts a function to [PESQScorer].
type PESQFunc func(sampleRate int, reference, degraded []float64, mode Mode) (float64, error)

// PESQ calls f.
func (f PESQFunc) PESQ(sampleRate int, reference, degraded []float64, mode Mode) (float64, error) {
	return f(sampleRate, reference, degraded, mode)
}

// STOIFunc adapts a function to [STOIScorer].
type STOIFunc func(reference, degraded []float64, sampleRate int, extended bool) (float64, error)

// STOI calls f.
func (f STOIFunc) STOI(reference, degraded []float64, sampleRate int, extended bool) (float64, error) {
	return f(reference, degraded, sampleRate, extended)
}

// PESQProbe loads the PESQ scorer. It is called at most once per [Capability].
type PESQProbe func() (PESQScorer, error)
