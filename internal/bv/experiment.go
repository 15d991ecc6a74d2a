package bv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	models "github.com/jaskrrish/Go-BV/internal/models/bv"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunStore persists experiments and their runs. GetExperiment returns
// models.ErrExperimentNotFound for unknown IDs.
type RunStore interface {
	SaveExperiment(ctx context.Context, e *models.Experiment) error
	GetExperiment(ctx context.Context, id uuid.UUID) (*models.Experiment, error)
	SaveRun(ctx context.Context, r *models.Run) error
	ListRuns(ctx context.Context, experimentID uuid.UUID) ([]*models.Run, error)
	DeleteExperiment(ctx context.Context, id uuid.UUID) error
}

// DefaultMaxNoisyAmplitudes bounds shots × 2^qubits for gate-noise runs on
// the local simulator. Every such shot simulates its own state vector.
const DefaultMaxNoisyAmplitudes int64 = 1 << 28

// ManagerOptions configures an ExperimentManager
type ManagerOptions struct {
	// MaxQubits caps experiment size, typically the backend limit
	MaxQubits int
	// DefaultShots is used when a run request names none
	DefaultShots int
	// NoiseProfiles are the named noise models runs may reference
	NoiseProfiles map[string]*quantum.NoiseModel
	// MaxNoisyAmplitudes caps shots × 2^qubits for gate-noise runs on the
	// local simulator
	MaxNoisyAmplitudes int64
	// Store is optional
	Store  RunStore
	Logger zerolog.Logger
}

type experimentEntry struct {
	experiment *models.Experiment
	circuit    *Circuit
	runs       []*models.Run
	inflight   int
}

// settle sets the status once a run finishes; it stays running while other
// runs are still executing
func (e *experimentEntry) settle(status models.ExperimentStatus) {
	if e.inflight > 0 {
		e.experiment.Status = models.ExperimentRunning
		return
	}
	e.experiment.Status = status
}

// ExperimentManager holds built experiments and orchestrates their runs
type ExperimentManager struct {
	experiments map[uuid.UUID]*experimentEntry
	mutex       sync.RWMutex
	evaluator   *Evaluator
	opts        ManagerOptions
	log         zerolog.Logger
}

// NewExperimentManager creates a new experiment manager
func NewExperimentManager(evaluator *Evaluator, opts ManagerOptions) *ExperimentManager {
	if opts.MaxQubits <= 0 {
		opts.MaxQubits = quantum.MaxSimulatorQubits
	}
	if opts.DefaultShots <= 0 {
		opts.DefaultShots = 1024
	}
	if opts.NoiseProfiles == nil {
		opts.NoiseProfiles = make(map[string]*quantum.NoiseModel)
	}
	if opts.MaxNoisyAmplitudes <= 0 {
		opts.MaxNoisyAmplitudes = DefaultMaxNoisyAmplitudes
	}

	return &ExperimentManager{
		experiments: make(map[uuid.UUID]*experimentEntry),
		evaluator:   evaluator,
		opts:        opts,
		log:         opts.Logger.With().Str("component", "experiments").Logger(),
	}
}

// CreateExperiment compiles and builds the circuit for the requested secret
func (em *ExperimentManager) CreateExperiment(ctx context.Context, req *models.ExperimentCreateRequest) (*models.Experiment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.NumQubits > em.opts.MaxQubits {
		return nil, fmt.Errorf("%w: %d qubits exceeds the backend limit of %d", ErrRange, req.NumQubits, em.opts.MaxQubits)
	}

	style, err := ParseOracleStyle(req.OracleStyle)
	if err != nil {
		return nil, err
	}
	plan, err := CompileOracle(Secret{A: req.A, B: quantum.Bit(req.B)}, req.NumQubits, style)
	if err != nil {
		return nil, err
	}
	circuit, err := BuildCircuit(plan)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	experiment := &models.Experiment{
		ExperimentID:     uuid.New(),
		NumQubits:        req.NumQubits,
		A:                req.A,
		B:                req.B,
		OracleStyle:      style.String(),
		Status:           models.ExperimentReady,
		Expected:         circuit.ExpectedOutcome(),
		Fingerprint:      circuit.Fingerprint(),
		CorrelatingGates: plan.CorrelatingGates(),
		NumOperations:    circuit.circuit.Len(),
		CreatedAt:        now,
		ExpiresAt:        now.Add(time.Duration(req.TTLMinutes) * time.Minute),
	}

	if em.opts.Store != nil {
		if err := em.opts.Store.SaveExperiment(ctx, experiment); err != nil {
			return nil, fmt.Errorf("persist experiment: %w", err)
		}
	}

	em.mutex.Lock()
	em.experiments[experiment.ExperimentID] = &experimentEntry{
		experiment: experiment,
		circuit:    circuit,
	}
	experimentsActive.Set(float64(len(em.experiments)))
	em.mutex.Unlock()

	em.log.Info().
		Str("experiment_id", experiment.ExperimentID.String()).
		Int("qubits", experiment.NumQubits).
		Str("style", experiment.OracleStyle).
		Str("fingerprint", experiment.Fingerprint[:12]).
		Msg("Experiment created")

	copied := *experiment
	return &copied, nil
}

// GetExperiment retrieves an experiment by ID
func (em *ExperimentManager) GetExperiment(ctx context.Context, id uuid.UUID) (*models.Experiment, error) {
	if err := em.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}

	em.mutex.RLock()
	defer em.mutex.RUnlock()

	entry, err := em.lookup(id)
	if err != nil {
		return nil, err
	}

	copied := *entry.experiment
	return &copied, nil
}

// GetQASM returns the OpenQASM text of an experiment's circuit
func (em *ExperimentManager) GetQASM(ctx context.Context, id uuid.UUID) (string, error) {
	if err := em.ensureLoaded(ctx, id); err != nil {
		return "", err
	}

	em.mutex.RLock()
	defer em.mutex.RUnlock()

	entry, err := em.lookup(id)
	if err != nil {
		return "", err
	}
	return entry.circuit.QASM(), nil
}

// RunExperiment evaluates an experiment's circuit and records the run
func (em *ExperimentManager) RunExperiment(ctx context.Context, id uuid.UUID, req *models.RunRequest) (*models.Run, error) {
	if err := req.Validate(em.opts.DefaultShots); err != nil {
		return nil, err
	}

	noise := req.Noise
	if req.NoiseProfile != "" {
		profile, ok := em.opts.NoiseProfiles[req.NoiseProfile]
		if !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownNoiseProfile, req.NoiseProfile)
		}
		noise = profile
	}

	if err := em.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}

	em.mutex.Lock()
	entry, err := em.lookup(id)
	if err != nil {
		em.mutex.Unlock()
		return nil, err
	}
	if err := em.checkNoisyBudget(entry.experiment.NumQubits, req.Shots, noise); err != nil {
		em.mutex.Unlock()
		return nil, err
	}
	entry.inflight++
	entry.experiment.Status = models.ExperimentRunning
	circuit := entry.circuit
	em.mutex.Unlock()

	evaluation, err := em.evaluator.Run(ctx, circuit, req.Shots, noise)

	em.mutex.Lock()
	defer em.mutex.Unlock()

	entry.inflight--

	// the experiment may have been deleted while running
	if em.experiments[id] != entry {
		if err != nil {
			return nil, err
		}
		return nil, models.ErrExperimentNotFound
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// cancelled by the caller, not a circuit failure
			entry.settle(models.ExperimentReady)
			return nil, err
		}
		entry.experiment.Message = err.Error()
		entry.settle(models.ExperimentFailed)
		return nil, err
	}

	now := time.Now()
	run := &models.Run{
		RunID:        uuid.New(),
		ExperimentID: id,
		Shots:        evaluation.Shots,
		Backend:      evaluation.Backend,
		JobID:        evaluation.JobID,
		NoiseProfile: req.NoiseProfile,
		Noise:        noise,
		Counts:       evaluation.Counts,
		Accuracy:     evaluation.Accuracy,
		MostFrequent: evaluation.MostFrequent,
		RecoveredA:   evaluation.RecoveredA,
		Recovered:    evaluation.Recovered,
		BitErrorRate: evaluation.BitErrorRate,
		DurationMs:   evaluation.Duration.Milliseconds(),
		CreatedAt:    now,
	}

	if em.opts.Store != nil {
		if err := em.opts.Store.SaveRun(ctx, run); err != nil {
			em.log.Warn().Err(err).Str("run_id", run.RunID.String()).Msg("Failed to persist run")
		}
	}

	entry.runs = append(entry.runs, run)
	entry.settle(models.ExperimentReady)
	entry.experiment.Message = ""
	entry.experiment.RunCount = len(entry.runs)
	entry.experiment.LastRunAt = &now

	return run, nil
}

// ListRuns returns an experiment's runs, oldest first, and their summary
func (em *ExperimentManager) ListRuns(ctx context.Context, id uuid.UUID) ([]*models.Run, *models.RunSummary, error) {
	if err := em.ensureLoaded(ctx, id); err != nil {
		return nil, nil, err
	}

	em.mutex.RLock()
	defer em.mutex.RUnlock()

	entry, err := em.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	runs := make([]*models.Run, len(entry.runs))
	copy(runs, entry.runs)

	return runs, Summarize(id, runs), nil
}

// Summarize computes accuracy statistics over a set of runs
func Summarize(id uuid.UUID, runs []*models.Run) *models.RunSummary {
	summary := &models.RunSummary{ExperimentID: id, Runs: len(runs)}
	if len(runs) == 0 {
		return summary
	}

	accuracies := make([]float64, len(runs))
	for i, r := range runs {
		accuracies[i] = r.Accuracy
		summary.TotalShots += r.Shots
	}

	summary.MeanAccuracy = stat.Mean(accuracies, nil)
	summary.MinAccuracy = floats.Min(accuracies)
	summary.MaxAccuracy = floats.Max(accuracies)
	// sample standard deviation needs at least two runs
	if len(accuracies) > 1 {
		summary.StdDevAccuracy = stat.StdDev(accuracies, nil)
	}

	return summary
}

// DeleteExperiment removes an experiment and its runs
func (em *ExperimentManager) DeleteExperiment(ctx context.Context, id uuid.UUID) error {
	if err := em.ensureLoaded(ctx, id); err != nil {
		return err
	}

	em.mutex.Lock()
	if _, exists := em.experiments[id]; !exists {
		em.mutex.Unlock()
		return models.ErrExperimentNotFound
	}
	delete(em.experiments, id)
	experimentsActive.Set(float64(len(em.experiments)))
	em.mutex.Unlock()

	if em.opts.Store != nil {
		if err := em.opts.Store.DeleteExperiment(ctx, id); err != nil {
			return fmt.Errorf("delete stored experiment: %w", err)
		}
	}
	return nil
}

// CleanupExpired drops experiments past their expiry from memory and returns
// how many were removed. Stored copies are left to the retention purge.
func (em *ExperimentManager) CleanupExpired(ctx context.Context) int {
	now := time.Now()

	em.mutex.Lock()
	removed := 0
	for id, entry := range em.experiments {
		if now.After(entry.experiment.ExpiresAt) && entry.inflight == 0 {
			delete(em.experiments, id)
			removed++
		}
	}
	experimentsActive.Set(float64(len(em.experiments)))
	em.mutex.Unlock()

	if removed > 0 {
		experimentsExpired.Add(float64(removed))
		em.log.Info().Int("removed", removed).Msg("Expired experiments cleaned up")
	}
	return removed
}

// ActiveExperiments returns the number of experiments held in memory
func (em *ExperimentManager) ActiveExperiments() int {
	em.mutex.RLock()
	defer em.mutex.RUnlock()
	return len(em.experiments)
}

// NoiseProfiles returns the names of the configured noise profiles, sorted
func (em *ExperimentManager) NoiseProfiles() []string {
	names := make([]string, 0, len(em.opts.NoiseProfiles))
	for name := range em.opts.NoiseProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backend returns the backend experiments run on
func (em *ExperimentManager) Backend() quantum.QuantumBackend {
	return em.evaluator.Backend()
}

// lookup must be called with the mutex held
func (em *ExperimentManager) lookup(id uuid.UUID) (*experimentEntry, error) {
	entry, exists := em.experiments[id]
	if !exists {
		return nil, models.ErrExperimentNotFound
	}
	if time.Now().After(entry.experiment.ExpiresAt) {
		return nil, models.ErrExperimentExpired
	}
	return entry, nil
}

// checkNoisyBudget rejects gate-noise runs too large to finish on the local
// simulator
func (em *ExperimentManager) checkNoisyBudget(numQubits, shots int, noise *quantum.NoiseModel) error {
	if !noise.HasGateErrors() {
		return nil
	}
	if _, local := em.evaluator.Backend().(*quantum.SimulatorBackend); !local {
		return nil
	}

	work := float64(shots) * math.Ldexp(1, numQubits)
	if work > float64(em.opts.MaxNoisyAmplitudes) {
		maxShots := em.opts.MaxNoisyAmplitudes >> uint(numQubits)
		return fmt.Errorf("%w: gate noise on %d qubits allows at most %d shots, got %d",
			ErrRange, numQubits, maxShots, shots)
	}
	return nil
}

// ensureLoaded restores an experiment missing from memory from the store.
// Unknown IDs are left for lookup to report.
func (em *ExperimentManager) ensureLoaded(ctx context.Context, id uuid.UUID) error {
	if em.opts.Store == nil {
		return nil
	}

	em.mutex.RLock()
	_, exists := em.experiments[id]
	em.mutex.RUnlock()
	if exists {
		return nil
	}

	entry, err := em.restore(ctx, id)
	if errors.Is(err, models.ErrExperimentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	em.mutex.Lock()
	if _, exists := em.experiments[id]; !exists {
		em.experiments[id] = entry
		experimentsActive.Set(float64(len(em.experiments)))
	}
	em.mutex.Unlock()
	return nil
}

// restore rebuilds an experiment's circuit from its stored secret and loads
// its runs
func (em *ExperimentManager) restore(ctx context.Context, id uuid.UUID) (*experimentEntry, error) {
	experiment, err := em.opts.Store.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}

	style, err := ParseOracleStyle(experiment.OracleStyle)
	if err != nil {
		return nil, fmt.Errorf("restore experiment %s: %w", id, err)
	}
	plan, err := CompileOracle(Secret{A: experiment.A, B: quantum.Bit(experiment.B)}, experiment.NumQubits, style)
	if err != nil {
		return nil, fmt.Errorf("restore experiment %s: %w", id, err)
	}
	circuit, err := BuildCircuit(plan)
	if err != nil {
		return nil, fmt.Errorf("restore experiment %s: %w", id, err)
	}
	if circuit.Fingerprint() != experiment.Fingerprint {
		return nil, fmt.Errorf("restore experiment %s: stored fingerprint does not match the rebuilt circuit", id)
	}

	runs, err := em.opts.Store.ListRuns(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore experiment %s: %w", id, err)
	}

	// no run survives a restart mid-flight
	experiment.Status = models.ExperimentReady
	experiment.RunCount = len(runs)
	if len(runs) > 0 {
		last := runs[len(runs)-1].CreatedAt
		experiment.LastRunAt = &last
	}

	em.log.Info().
		Str("experiment_id", id.String()).
		Int("runs", len(runs)).
		Msg("Experiment restored from store")

	return &experimentEntry{
		experiment: experiment,
		circuit:    circuit,
		runs:       runs,
	}, nil
}
