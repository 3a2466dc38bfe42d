package quality

import "fmt"

// Status tags the outcome of a delegated metric call.
type Status int

const (
	// StatusOK means the scorer produced a score.
	StatusOK Status = iota
	// StatusUnavailable means no scorer was available to call.
	StatusUnavailable
	// StatusFailed means the scorer was called and returned an error or panicked.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the tagged result of a delegated metric call.
// Score is meaningful only when Status is [StatusOK]; Err is set otherwise.
type Outcome struct {
	Status Status
	Score  float64
	Err    error
}

// OK reports whether the outcome carries a score.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Contribution resolves the outcome under policy. It returns the value to
// add to the metric's accumulator and whether anything is added at all.
func (o Outcome) Contribution(policy FailurePolicy) (float64, bool) {
	if o.Status == StatusOK {
		return o.Score, true
	}

	if policy == PolicyZero {
		return 0, true
	}

	return 0, false
}

func scored(score float64) Outcome {
	return Outcome{Status: StatusOK, Score: score}
}

func unavailable(err error) Outcome {
	return Outcome{Status: StatusUnavailable, Err: err}
}

func failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// FailurePolicy decides how a non-OK [Outcome] enters a batch mean.
type FailurePolicy string

const (
	// PolicyExclude drops non-OK outcomes; they shrink the sample count.
	PolicyExclude FailurePolicy = "exclude"
	// PolicyZero counts non-OK outcomes as a score of 0.
	PolicyZero FailurePolicy = "zero"
)

// Valid reports whether p names a known policy.
func (p FailurePolicy) Valid() bool {
	return p == PolicyExclude || p == PolicyZero
}
