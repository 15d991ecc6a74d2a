package bv

import (
	"time"

	"github.com/google/uuid"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
)

// ExperimentStatus represents the current state of an experiment
type ExperimentStatus string

const (
	ExperimentReady   ExperimentStatus = "ready"
	ExperimentRunning ExperimentStatus = "running"
	ExperimentFailed  ExperimentStatus = "failed"
)

// Oracle styles accepted by the API
const (
	OracleStyleCX = "cx"
	OracleStyleCZ = "cz"
)

// Experiment is a built BV circuit for one secret, runnable many times
type Experiment struct {
	ExperimentID     uuid.UUID        `json:"experiment_id"`
	NumQubits        int              `json:"num_qubits"`
	A                uint64           `json:"a"`
	B                int              `json:"b"`
	OracleStyle      string           `json:"oracle_style"`
	Status           ExperimentStatus `json:"status"`
	Expected         string           `json:"expected"`
	Fingerprint      string           `json:"fingerprint"`
	CorrelatingGates int              `json:"correlating_gates"`
	NumOperations    int              `json:"num_operations"`
	RunCount         int              `json:"run_count"`
	Message          string           `json:"message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	LastRunAt        *time.Time       `json:"last_run_at,omitempty"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

// Run is one evaluation of an experiment
type Run struct {
	RunID        uuid.UUID           `json:"run_id"`
	ExperimentID uuid.UUID           `json:"experiment_id"`
	Shots        int                 `json:"shots"`
	Backend      string              `json:"backend"`
	JobID        string              `json:"job_id,omitempty"`
	NoiseProfile string              `json:"noise_profile,omitempty"`
	Noise        *quantum.NoiseModel `json:"noise,omitempty"`
	Counts       map[string]int      `json:"counts"`
	Accuracy     float64             `json:"accuracy"`
	MostFrequent string              `json:"most_frequent"`
	RecoveredA   uint64              `json:"recovered_a"`
	Recovered    bool                `json:"recovered"`
	BitErrorRate float64             `json:"bit_error_rate"`
	DurationMs   int64               `json:"duration_ms"`
	CreatedAt    time.Time           `json:"created_at"`
}

// RunSummary aggregates accuracy over the runs of an experiment
type RunSummary struct {
	ExperimentID   uuid.UUID `json:"experiment_id"`
	Runs           int       `json:"runs"`
	TotalShots     int       `json:"total_shots"`
	MeanAccuracy   float64   `json:"mean_accuracy"`
	StdDevAccuracy float64   `json:"stddev_accuracy"`
	MinAccuracy    float64   `json:"min_accuracy"`
	MaxAccuracy    float64   `json:"max_accuracy"`
}

// ExperimentCreateRequest represents a request to build a new experiment
type ExperimentCreateRequest struct {
	NumQubits   int    `json:"num_qubits"`
	A           uint64 `json:"a"`
	B           int    `json:"b"`
	OracleStyle string `json:"oracle_style,omitempty"`
	TTLMinutes  int    `json:"ttl_minutes,omitempty"`
}

// RunRequest represents a request to evaluate an experiment. At most one of
// Noise and NoiseProfile may be set.
type RunRequest struct {
	Shots        int                 `json:"shots,omitempty"`
	Noise        *quantum.NoiseModel `json:"noise,omitempty"`
	NoiseProfile string              `json:"noise_profile,omitempty"`
}

// ExperimentResponse represents the response when creating or querying an experiment
type ExperimentResponse struct {
	Experiment *Experiment `json:"experiment"`
	Error      string      `json:"error,omitempty"`
}

// RunResponse represents the response to a run request
type RunResponse struct {
	Run   *Run   `json:"run"`
	Error string `json:"error,omitempty"`
}

// RunListResponse lists the runs of an experiment with their summary
type RunListResponse struct {
	Runs    []*Run      `json:"runs"`
	Summary *RunSummary `json:"summary"`
}

// Request limits
const (
	MaxNumQubits      = 64
	DefaultTTLMinutes = 1440
	MaxTTLMinutes     = 10080
	MaxShots          = 1_000_000
)

// Validate validates an experiment create request and fills defaults
func (r *ExperimentCreateRequest) Validate() error {
	if r.NumQubits < 2 || r.NumQubits > MaxNumQubits {
		return ErrInvalidNumQubits
	}

	if r.B != 0 && r.B != 1 {
		return ErrInvalidSecretBit
	}

	if r.OracleStyle == "" {
		r.OracleStyle = OracleStyleCX
	}
	if r.OracleStyle != OracleStyleCX && r.OracleStyle != OracleStyleCZ {
		return ErrInvalidOracleStyle
	}

	if r.TTLMinutes == 0 {
		r.TTLMinutes = DefaultTTLMinutes
	}
	if r.TTLMinutes < 1 || r.TTLMinutes > MaxTTLMinutes {
		return ErrInvalidTTL
	}

	return nil
}

// Validate validates a run request, using defaultShots when none are given
func (r *RunRequest) Validate(defaultShots int) error {
	if r.Shots == 0 {
		r.Shots = defaultShots
	}
	if r.Shots < 1 || r.Shots > MaxShots {
		return ErrInvalidShots
	}

	if r.Noise != nil && r.NoiseProfile != "" {
		return ErrInvalidNoise
	}
	if err := r.Noise.Validate(); err != nil {
		return ErrInvalidNoise
	}

	return nil
}

// Custom errors
type ExperimentError struct {
	Message string
}

func (e *ExperimentError) Error() string {
	return e.Message
}

var (
	ErrInvalidNumQubits    = &ExperimentError{"num_qubits must be between 2 and 64"}
	ErrInvalidSecretBit    = &ExperimentError{"b must be 0 or 1"}
	ErrInvalidOracleStyle  = &ExperimentError{"oracle_style must be cx or cz"}
	ErrInvalidTTL          = &ExperimentError{"TTL must be between 1 and 10080 minutes"}
	ErrInvalidShots        = &ExperimentError{"shots must be between 1 and 1000000"}
	ErrInvalidNoise        = &ExperimentError{"noise must be a valid model and cannot be combined with noise_profile"}
	ErrUnknownNoiseProfile = &ExperimentError{"unknown noise profile"}
	ErrExperimentNotFound  = &ExperimentError{"experiment not found"}
	ErrExperimentExpired   = &ExperimentError{"experiment has expired"}
)
