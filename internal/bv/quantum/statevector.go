package quantum

import (
	"math"
	"math/rand/v2"
)

// probabilityCutoff drops numerically negligible outcomes before sampling
const probabilityCutoff = 1e-12

// StateVector holds the 2^n complex amplitudes of an n-qubit register.
// Basis index bit q is the state of qubit q.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0...0⟩
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Apply applies a unitary operation. Measurements are ignored here; they are
// resolved when sampling.
func (s *StateVector) Apply(op Operation) {
	switch op.Kind {
	case GateH:
		s.applyH(op.Qubits[0])
	case GateX:
		s.applyX(op.Qubits[0])
	case GateCX:
		s.applyCX(op.Qubits[0], op.Qubits[1])
	case GateCZ:
		s.applyCZ(op.Qubits[0], op.Qubits[1])
	}
}

// Probability returns |amplitude|^2 of a basis state
func (s *StateVector) Probability(index int) float64 {
	a := s.Amplitudes[index]
	return real(a)*real(a) + imag(a)*imag(a)
}

func (s *StateVector) applyH(q int) {
	h := complex(1/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = h * (a0 + a1)
			s.Amplitudes[j] = h * (a0 - a1)
		}
	}
}

func (s *StateVector) applyX(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyY(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	bit := 1 << q
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCX(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range s.Amplitudes {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	mask := 1<<control | 1<<target
	for i := range s.Amplitudes {
		if i&mask == mask {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

// applyPauli applies I, X, Y or Z (0..3) to qubit q
func (s *StateVector) applyPauli(q, pauli int) {
	switch pauli {
	case 1:
		s.applyX(q)
	case 2:
		s.applyY(q)
	case 3:
		s.applyZ(q)
	}
}

// depolarize injects a random non-identity Pauli error on the operation's
// qubits with the model's probability for that arity.
func (s *StateVector) depolarize(op Operation, noise *NoiseModel, rng *rand.Rand) {
	switch len(op.Qubits) {
	case 1:
		if noise.Depolarizing1Q > 0 && rng.Float64() < noise.Depolarizing1Q {
			s.applyPauli(op.Qubits[0], 1+rng.IntN(3))
		}
	case 2:
		if noise.Depolarizing2Q > 0 && rng.Float64() < noise.Depolarizing2Q {
			// one of the 15 non-identity two-qubit Paulis
			r := 1 + rng.IntN(15)
			s.applyPauli(op.Qubits[0], r%4)
			s.applyPauli(op.Qubits[1], r/4)
		}
	}
}
