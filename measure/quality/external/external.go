package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-speechmetrics/measure/quality"
)

var (
	errNoCommand   = errors.New("external: command not set")
	errEmptyOutput = errors.New("external: scorer printed no score")
)

// Config describes how to run a scoring executable.
type Config struct {
	// Command is the executable name or path.
	Command string
	// Args are passed to the executable unchanged.
	Args []string
	// Env entries are appended to the current environment.
	Env []string
	// Timeout bounds one call; zero means no limit.
	Timeout time.Duration
}

type request struct {
	Metric     string    `json:"metric"`
	SampleRate int       `json:"sample_rate"`
	Mode       string    `json:"mode,omitempty"`
	Extended   bool      `json:"extended,omitempty"`
	Reference  []float64 `json:"reference"`
	Degraded   []float64 `json:"degraded"`
}

// PESQ scores with an external P.862 executable.
type PESQ struct {
	cfg Config
}

// NewPESQ returns a PESQ scorer running cfg.Command.
func NewPESQ(cfg Config) *PESQ {
	return &PESQ{cfg: cfg}
}

// PESQ implements quality.PESQScorer.
func (p *PESQ) PESQ(sampleRate int, reference, degraded []float64, mode quality.Mode) (float64, error) {
	return run(p.cfg, request{
		Metric:     string(quality.MetricPESQ),
		SampleRate: sampleRate,
		Mode:       string(mode),
		Reference:  reference,
		Degraded:   degraded,
	})
}

// STOI scores with an external STOI executable.
type STOI struct {
	cfg Config
}

// NewSTOI returns a STOI scorer running cfg.Command.
func NewSTOI(cfg Config) *STOI {
	return &STOI{cfg: cfg}
}

// STOI implements quality.STOIScorer.
func (s *STOI) STOI(reference, degraded []float64, sampleRate int, extended bool) (float64, error) {
	return run(s.cfg, request{
		Metric:     string(quality.MetricSTOI),
		SampleRate: sampleRate,
		Extended:   extended,
		Reference:  reference,
		Degraded:   degraded,
	})
}

// PESQProbe returns a probe that succeeds when cfg.Command resolves to an
// executable.
func PESQProbe(cfg Config) quality.PESQProbe {
	return func() (quality.PESQScorer, error) {
		if cfg.Command == "" {
			return nil, errNoCommand
		}

		path, err := exec.LookPath(cfg.Command)
		if err != nil {
			return nil, fmt.Errorf("external: locate pesq scorer: %w", err)
		}

		resolved := cfg
		resolved.Command = path

		return NewPESQ(resolved), nil
	}
}

func run(cfg Config, req request) (float64, error) {
	if cfg.Command == "" {
		return 0, errNoCommand
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("external: encode %s request: %w", req.Metric, err)
	}

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Stdin = bytes.NewReader(payload)

	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}

		return 0, fmt.Errorf("external: %s scorer %s: %w: %s", req.Metric, cfg.Command, err, strings.TrimSpace(stderr.String()))
	}

	return parseScore(stdout.String())
}

func parseScore(out string) (float64, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, errEmptyOutput
	}

	score, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("external: parse score: %w", err)
	}

	return score, nil
}
