package bv

import (
	"context"
	"fmt"
	"time"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/rs/zerolog"
)

// Evaluation is the scored outcome of one evaluator run. Counts keys put
// classical bit i (wire i) at character i.
type Evaluation struct {
	Counts        map[string]int      `json:"counts"`
	Shots         int                 `json:"shots"`
	Expected      string              `json:"expected"`
	Accuracy      float64             `json:"accuracy"`
	MostFrequent  string              `json:"most_frequent"`
	RecoveredA    uint64              `json:"recovered_a"`
	Recovered     bool                `json:"recovered"`
	BitErrorRate  float64             `json:"bit_error_rate"`
	Backend       string              `json:"backend"`
	JobID         string              `json:"job_id,omitempty"`
	Noise         *quantum.NoiseModel `json:"noise,omitempty"`
	Duration      time.Duration       `json:"duration"`
	CircuitLength int                 `json:"circuit_length"`
}

// Evaluator executes built circuits on a backend and scores the counts.
// It keeps no state between runs.
type Evaluator struct {
	backend quantum.QuantumBackend
	log     zerolog.Logger
}

// NewEvaluator creates an evaluator bound to a backend
func NewEvaluator(backend quantum.QuantumBackend, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		backend: backend,
		log:     logger.With().Str("component", "evaluator").Str("backend", backend.Name()).Logger(),
	}
}

// Backend returns the backend runs execute on
func (e *Evaluator) Backend() quantum.QuantumBackend {
	return e.backend
}

// Run transpiles the circuit for the backend, executes it once for the given
// number of shots and scores accuracy = count(expected) / shots. The noise
// model is handed to the backend untouched; nil means ideal.
func (e *Evaluator) Run(ctx context.Context, c *Circuit, shots int, noise *quantum.NoiseModel) (*Evaluation, error) {
	if c == nil {
		return nil, ErrNotConstructed
	}
	if shots <= 0 {
		return nil, fmt.Errorf("%w: shots must be positive, got %d", ErrConfig, shots)
	}

	backendName := e.backend.Name()
	style := c.Style().String()

	compiled, err := quantum.Transpile(c.circuit, e.backend.Target())
	if err != nil {
		runsTotal.WithLabelValues(backendName, style, "failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	e.log.Debug().
		Int("qubits", c.NumQubits()).
		Int("shots", shots).
		Str("style", style).
		Int("operations", compiled.Len()).
		Bool("noisy", !noise.IsIdeal()).
		Msg("Executing circuit")

	result, err := e.backend.Run(ctx, compiled, shots, noise)
	if err != nil {
		runsTotal.WithLabelValues(backendName, style, "failed").Inc()
		e.log.Error().Err(err).Msg("Backend execution failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrExecution, backendName, err)
	}

	counts, err := e.normalizeCounts(result.Counts, c.NumOutputs(), shots)
	if err != nil {
		runsTotal.WithLabelValues(backendName, style, "failed").Inc()
		return nil, err
	}

	expected := c.ExpectedOutcome()
	mostFrequent, _ := quantum.MostFrequent(counts)

	// keys were validated above, so neither parse can fail
	observed, _ := ParseBits(mostFrequent)
	want, _ := ParseBits(expected)
	recoveredA, _ := Decode(observed)
	bitErrorRate, _ := quantum.CalculateBitError(want, observed)

	evaluation := &Evaluation{
		Counts:        counts,
		Shots:         shots,
		Expected:      expected,
		Accuracy:      float64(counts[expected]) / float64(shots),
		MostFrequent:  mostFrequent,
		RecoveredA:    recoveredA,
		Recovered:     mostFrequent == expected,
		BitErrorRate:  bitErrorRate,
		Backend:       backendName,
		JobID:         result.JobID,
		Noise:         noise,
		Duration:      result.Duration,
		CircuitLength: compiled.Len(),
	}

	runsTotal.WithLabelValues(backendName, style, "succeeded").Inc()
	shotsTotal.WithLabelValues(backendName).Add(float64(shots))
	runAccuracy.WithLabelValues(style).Observe(evaluation.Accuracy)
	runDuration.WithLabelValues(backendName).Observe(result.Duration.Seconds())

	e.log.Info().
		Int("qubits", c.NumQubits()).
		Int("shots", shots).
		Float64("accuracy", evaluation.Accuracy).
		Str("most_frequent", mostFrequent).
		Dur("duration", result.Duration).
		Msg("Evaluation completed")

	return evaluation, nil
}

// normalizeCounts rewrites backend counts so character i is clbit i and
// checks that the histogram is well formed.
func (e *Evaluator) normalizeCounts(raw map[string]int, width, shots int) (map[string]int, error) {
	counts := quantum.ToBigEndian(raw, e.backend.BitOrder())

	total := 0
	for outcome, count := range counts {
		if len(outcome) != width {
			return nil, fmt.Errorf("%w: outcome %q has %d bits, want %d", ErrExecution, outcome, len(outcome), width)
		}
		if _, err := ParseBits(outcome); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: negative count for %q", ErrExecution, outcome)
		}
		total += count
	}
	if total != shots {
		return nil, fmt.Errorf("%w: counts sum to %d, want %d shots", ErrExecution, total, shots)
	}

	return counts, nil
}
