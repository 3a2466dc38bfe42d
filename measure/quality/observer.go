package quality

import "time"

// Observer receives evaluation events. Implementations must be safe for
// concurrent use when the evaluator runs with more than one worker.
type Observer interface {
	// ObserveOutcome is called once per delegated metric call.
	ObserveOutcome(metric Metric, status Status)
	// ObserveBatch is called once per evaluated batch.
	ObserveBatch(size int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveOutcome(Metric, Status)   {}
func (nopObserver) ObserveBatch(int, time.Duration) {}
