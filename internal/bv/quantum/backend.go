package quantum

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxSimulatorQubits bounds the state vector size (2^24 amplitudes)
const MaxSimulatorQubits = 24

// RunResult is the raw outcome of executing a circuit on a backend
type RunResult struct {
	// Counts maps an observed classical bitstring to its number of occurrences
	Counts map[string]int
	// Order is the layout of classical bits inside each Counts key
	Order    BitOrder
	Shots    int
	Backend  string
	JobID    string
	Duration time.Duration
}

// QuantumBackend defines the interface for quantum execution backends
type QuantumBackend interface {
	// Name returns the name of the quantum backend
	Name() string

	// Target returns the native gate set circuits must be transpiled to
	Target() Target

	// BitOrder returns the layout of classical bits in reported counts keys
	BitOrder() BitOrder

	// IsSimulator returns true if this is a simulator, false for real hardware
	IsSimulator() bool

	// Run executes the circuit for the given number of shots. A nil noise
	// model requests ideal execution.
	Run(ctx context.Context, circuit *Circuit, shots int, noise *NoiseModel) (*RunResult, error)
}

// SimulatorBackend is a state-vector simulator. Like Aer it reports counts
// keys with classical bit 0 as the rightmost character.
type SimulatorBackend struct {
	name      string
	seed      uint64
	maxQubits int
}

// NewSimulatorBackend creates a new simulator. A non-zero seed makes every Run
// with identical inputs return identical counts.
func NewSimulatorBackend(seed uint64) *SimulatorBackend {
	return &SimulatorBackend{
		name:      "StateVectorSimulator",
		seed:      seed,
		maxQubits: MaxSimulatorQubits,
	}
}

// WithMaxQubits lowers the qubit limit of the simulator
func (s *SimulatorBackend) WithMaxQubits(n int) *SimulatorBackend {
	if n > 0 && n <= MaxSimulatorQubits {
		s.maxQubits = n
	}
	return s
}

// Name returns the name of the simulator backend
func (s *SimulatorBackend) Name() string {
	return s.name
}

// Target returns the simulator gate set, which covers every gate kind
func (s *SimulatorBackend) Target() Target {
	return Target{
		Name:       s.name,
		BasisGates: []GateKind{GateX, GateH, GateCX, GateCZ},
	}
}

// BitOrder returns LittleEndian
func (s *SimulatorBackend) BitOrder() BitOrder {
	return LittleEndian
}

// IsSimulator returns true since this is a simulator
func (s *SimulatorBackend) IsSimulator() bool {
	return true
}

// Run simulates the circuit. Measurements must be terminal.
func (s *SimulatorBackend) Run(ctx context.Context, circuit *Circuit, shots int, noise *NoiseModel) (*RunResult, error) {
	start := time.Now()

	if circuit == nil {
		return nil, fmt.Errorf("simulator: nil circuit")
	}
	if shots <= 0 {
		return nil, fmt.Errorf("simulator: shots must be positive, got %d", shots)
	}
	if circuit.NumQubits() > s.maxQubits {
		return nil, fmt.Errorf("simulator: %d qubits exceeds the limit of %d", circuit.NumQubits(), s.maxQubits)
	}
	if err := noise.Validate(); err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}

	gates, measurements, err := splitTerminalMeasurements(circuit)
	if err != nil {
		return nil, err
	}

	src := s.newSource()
	rng := rand.New(src)

	outcomes := make(map[int]int)
	if noise.HasGateErrors() {
		// Gate errors differ per shot, so every shot gets its own trajectory.
		for shot := 0; shot < shots; shot++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			sv := NewStateVector(circuit.NumQubits())
			for _, op := range gates {
				sv.Apply(op)
				sv.depolarize(op, noise, rng)
			}
			values, weights := outcomeDistribution(sv, measurements)
			cat := distuv.NewCategorical(weights, src)
			outcomes[values[int(cat.Rand())]]++
		}
	} else {
		sv := NewStateVector(circuit.NumQubits())
		for _, op := range gates {
			sv.Apply(op)
		}
		values, weights := outcomeDistribution(sv, measurements)
		cat := distuv.NewCategorical(weights, src)
		for shot := 0; shot < shots; shot++ {
			if shot%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			outcomes[values[int(cat.Rand())]]++
		}
	}

	if noise != nil && noise.ReadoutError > 0 {
		outcomes = applyReadoutError(outcomes, measurements, noise.ReadoutError, rng)
	}

	counts := make(map[string]int, len(outcomes))
	for value, count := range outcomes {
		counts[formatLittleEndian(value, circuit.NumClbits())] += count
	}

	return &RunResult{
		Counts:   counts,
		Order:    LittleEndian,
		Shots:    shots,
		Backend:  s.name,
		Duration: time.Since(start),
	}, nil
}

func (s *SimulatorBackend) newSource() *rand.PCG {
	if s.seed != 0 {
		return rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15)
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// splitTerminalMeasurements separates unitary gates from the final
// measurements and rejects gates acting on already measured qubits.
func splitTerminalMeasurements(c *Circuit) ([]Operation, []Operation, error) {
	gates := make([]Operation, 0, c.Len())
	measurements := make([]Operation, 0)
	measured := make(map[int]bool)

	for _, op := range c.ops {
		if op.Kind == GateMeasure {
			measurements = append(measurements, op)
			measured[op.Qubits[0]] = true
			continue
		}
		for _, q := range op.Qubits {
			if measured[q] {
				return nil, nil, fmt.Errorf("simulator: gate %s acts on q[%d] after it was measured", op.Kind, q)
			}
		}
		gates = append(gates, op)
	}

	return gates, measurements, nil
}

// outcomeDistribution marginalises the state onto the measured classical bits.
// The returned values are classical register contents with bit c = clbit c.
func outcomeDistribution(sv *StateVector, measurements []Operation) ([]int, []float64) {
	dist := make(map[int]float64)
	for i := range sv.Amplitudes {
		p := sv.Probability(i)
		if p < probabilityCutoff {
			continue
		}
		value := 0
		for _, m := range measurements {
			if (i>>m.Qubits[0])&1 == 1 {
				value |= 1 << m.Clbit
			} else {
				value &^= 1 << m.Clbit
			}
		}
		dist[value] += p
	}

	values := make([]int, 0, len(dist))
	for v := range dist {
		values = append(values, v)
	}
	sort.Ints(values)

	weights := make([]float64, len(values))
	for i, v := range values {
		weights[i] = dist[v]
	}

	return values, weights
}

func applyReadoutError(outcomes map[int]int, measurements []Operation, p float64, rng *rand.Rand) map[int]int {
	// sorted so that seeded runs consume the generator in a fixed order
	values := make([]int, 0, len(outcomes))
	for v := range outcomes {
		values = append(values, v)
	}
	sort.Ints(values)

	flipped := make(map[int]int, len(outcomes))
	for _, value := range values {
		for i := 0; i < outcomes[value]; i++ {
			v := value
			for _, m := range measurements {
				if rng.Float64() < p {
					v ^= 1 << m.Clbit
				}
			}
			flipped[v]++
		}
	}
	return flipped
}

// formatLittleEndian renders a classical register with clbit 0 rightmost
func formatLittleEndian(value, width int) string {
	if width == 0 {
		return ""
	}
	return fmt.Sprintf("%0*b", width, value)
}

// QiskitBackend executes circuits remotely through the IBM Qiskit Runtime API
type QiskitBackend struct {
	name        string
	client      *QiskitClient
	deviceName  string
	maxWaitTime time.Duration
}

// NewQiskitBackend creates a new Qiskit backend
func NewQiskitBackend(client *QiskitClient, deviceName string, maxWaitTime time.Duration) *QiskitBackend {
	if maxWaitTime <= 0 {
		maxWaitTime = 10 * time.Minute
	}
	return &QiskitBackend{
		name:        "IBM-Qiskit-" + deviceName,
		client:      client,
		deviceName:  deviceName,
		maxWaitTime: maxWaitTime,
	}
}

// Name returns the name of the Qiskit backend
func (q *QiskitBackend) Name() string {
	return q.name
}

// Target returns the IBM basis subset used by the BV circuits
func (q *QiskitBackend) Target() Target {
	return Target{
		Name:       q.name,
		BasisGates: []GateKind{GateX, GateH, GateCX},
	}
}

// BitOrder returns LittleEndian, matching Qiskit's counts keys
func (q *QiskitBackend) BitOrder() BitOrder {
	return LittleEndian
}

// IsSimulator reports whether the selected device is one of IBM's simulators
func (q *QiskitBackend) IsSimulator() bool {
	return len(q.deviceName) >= 9 && q.deviceName[len(q.deviceName)-9:] == "simulator"
}

// Run submits the circuit as OpenQASM and waits for the counts
func (q *QiskitBackend) Run(ctx context.Context, circuit *Circuit, shots int, noise *NoiseModel) (*RunResult, error) {
	start := time.Now()

	if circuit == nil {
		return nil, fmt.Errorf("qiskit: nil circuit")
	}
	if shots <= 0 {
		return nil, fmt.Errorf("qiskit: shots must be positive, got %d", shots)
	}

	result, err := q.client.ExecuteCircuitSync(ctx, &QiskitCircuit{
		QASM:       circuit.ToQASM(),
		Shots:      shots,
		Backend:    q.deviceName,
		NoiseModel: noise,
	}, q.maxWaitTime)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("qiskit job %s unsuccessful: %s", result.JobID, result.StatusMsg)
	}

	return &RunResult{
		Counts:   result.Counts,
		Order:    LittleEndian,
		Shots:    shots,
		Backend:  q.name,
		JobID:    result.JobID,
		Duration: time.Since(start),
	}, nil
}
