package quality

import "errors"

var (
	// ErrBatchSizeMismatch reports clean and enhanced batches of different sizes.
	ErrBatchSizeMismatch = errors.New("quality: clean and enhanced batch sizes differ")

	// ErrMalformedTensor reports a tensor whose shape cannot be read as a
	// single signal or a batch of signals.
	ErrMalformedTensor = errors.New("quality: malformed tensor")

	// ErrInvalidConfig reports an evaluator configuration that fails validation.
	ErrInvalidConfig = errors.New("quality: invalid evaluator config")

	// ErrPESQUnavailable reports that no PESQ scorer could be loaded.
	ErrPESQUnavailable = errors.New("quality: pesq scorer unavailable")

	// ErrSTOIUnavailable reports that no STOI scorer is configured.
	ErrSTOIUnavailable = errors.New("quality: stoi scorer unavailable")

	// ErrScorerPanic wraps a panic recovered from an external scorer.
	ErrScorerPanic = errors.New("quality: scorer panicked")

	// ErrDefaultCapabilityBuilt reports a registration attempted after the
	// process-wide capability was already built.
	ErrDefaultCapabilityBuilt = errors.New("quality: default capability already built")
)
