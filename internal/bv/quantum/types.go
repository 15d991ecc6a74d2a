package quantum

import (
	"fmt"
)

// Bit represents a classical bit (0 or 1)
type Bit int

const (
	Zero Bit = 0
	One  Bit = 1
)

// BitOrder describes how a backend lays classical bits out in a counts key
type BitOrder int

const (
	// LittleEndian puts classical bit 0 in the rightmost character (Qiskit convention)
	LittleEndian BitOrder = 0
	// BigEndian puts classical bit 0 in the leftmost character
	BigEndian BitOrder = 1
)

func (o BitOrder) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	default:
		return "unknown"
	}
}

// GateKind names an operation that can be placed on a circuit
type GateKind string

const (
	GateX       GateKind = "x"
	GateH       GateKind = "h"
	GateCX      GateKind = "cx"
	GateCZ      GateKind = "cz"
	GateMeasure GateKind = "measure"
)

// Arity returns the number of qubits the gate acts on
func (k GateKind) Arity() int {
	switch k {
	case GateX, GateH, GateMeasure:
		return 1
	case GateCX, GateCZ:
		return 2
	default:
		return 0
	}
}

// SelfInverse reports whether applying the gate twice is the identity
func (k GateKind) SelfInverse() bool {
	switch k {
	case GateX, GateH, GateCX, GateCZ:
		return true
	default:
		return false
	}
}

// Operation is a single gate placement. For two-qubit gates Qubits is
// [control, target]. Clbit is only meaningful for measurements.
type Operation struct {
	Kind   GateKind
	Qubits []int
	Clbit  int
}

// Touches reports whether the operation acts on the given qubit
func (op Operation) Touches(qubit int) bool {
	for _, q := range op.Qubits {
		if q == qubit {
			return true
		}
	}
	return false
}

func (op Operation) String() string {
	switch {
	case op.Kind == GateMeasure:
		return fmt.Sprintf("measure q[%d] -> c[%d]", op.Qubits[0], op.Clbit)
	case len(op.Qubits) == 2:
		return fmt.Sprintf("%s q[%d],q[%d]", op.Kind, op.Qubits[0], op.Qubits[1])
	case len(op.Qubits) == 1:
		return fmt.Sprintf("%s q[%d]", op.Kind, op.Qubits[0])
	default:
		return string(op.Kind)
	}
}

func (op Operation) clone() Operation {
	qubits := make([]int, len(op.Qubits))
	copy(qubits, op.Qubits)
	op.Qubits = qubits
	return op
}

// ReverseBitstring reverses a counts key, converting between LittleEndian and BigEndian
func ReverseBitstring(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ToBigEndian rewrites counts reported in the given order so that character i is classical bit i
func ToBigEndian(counts map[string]int, order BitOrder) map[string]int {
	normalized := make(map[string]int, len(counts))
	for outcome, count := range counts {
		key := outcome
		if order == LittleEndian {
			key = ReverseBitstring(outcome)
		}
		normalized[key] += count
	}
	return normalized
}

// CalculateBitError calculates the error rate between two bit sequences
func CalculateBitError(bits1, bits2 []Bit) (float64, error) {
	if len(bits1) != len(bits2) {
		return 0, fmt.Errorf("bit sequences must have the same length")
	}

	if len(bits1) == 0 {
		return 0, nil
	}

	errors := 0
	for i := range bits1 {
		if bits1[i] != bits2[i] {
			errors++
		}
	}

	return float64(errors) / float64(len(bits1)), nil
}
