package quality

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseEvaluatorConfig decodes a YAML evaluator configuration. Keys that are
// absent keep their [DefaultEvaluatorConfig] values; unknown keys are rejected.
//
//	sample_rate: 8000
//	compute_pesq: true
//	pesq_mode: nb
//	stoi_policy: exclude
//	workers: 4
func ParseEvaluatorConfig(data []byte) (EvaluatorConfig, error) {
	cfg := DefaultEvaluatorConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return EvaluatorConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := validateConfig(cfg); err != nil {
		return EvaluatorConfig{}, err
	}

	return cfg, nil
}

func validateConfig(cfg EvaluatorConfig) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive: %d", ErrInvalidConfig, cfg.SampleRate)
	}

	if !cfg.PESQMode.Valid() {
		return fmt.Errorf("%w: pesq_mode must be %q or %q: %q", ErrInvalidConfig, ModeWideband, ModeNarrowband, cfg.PESQMode)
	}

	if !cfg.PESQPolicy.Valid() {
		return fmt.Errorf("%w: pesq_policy must be %q or %q: %q", ErrInvalidConfig, PolicyExclude, PolicyZero, cfg.PESQPolicy)
	}

	if !cfg.STOIPolicy.Valid() {
		return fmt.Errorf("%w: stoi_policy must be %q or %q: %q", ErrInvalidConfig, PolicyExclude, PolicyZero, cfg.STOIPolicy)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0: %d", ErrInvalidConfig, cfg.Workers)
	}

	return nil
}
