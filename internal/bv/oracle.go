package bv

import (
	"fmt"
	"strings"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
)

// OracleStyle selects how the oracle correlates the input register with the
// target wire. It fixes both the correlating gate and the Hadamard scope.
type OracleStyle int

const (
	// ControlledNot uses CX gates and wraps all n wires in Hadamards
	ControlledNot OracleStyle = iota
	// PhaseKickback uses CZ gates and wraps only the input wires, so the target stays in |1⟩
	PhaseKickback
)

func (s OracleStyle) String() string {
	switch s {
	case ControlledNot:
		return "cx"
	case PhaseKickback:
		return "cz"
	default:
		return "unknown"
	}
}

// ParseOracleStyle accepts "cx"/"controlled_not" and "cz"/"phase_kickback"
func ParseOracleStyle(s string) (OracleStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cx", "cnot", "controlled_not":
		return ControlledNot, nil
	case "cz", "phase_kickback":
		return PhaseKickback, nil
	default:
		return 0, fmt.Errorf("%w: unknown oracle style %q", ErrInput, s)
	}
}

func (s OracleStyle) valid() bool {
	return s == ControlledNot || s == PhaseKickback
}

func (s OracleStyle) correlatingGate() quantum.GateKind {
	if s == PhaseKickback {
		return quantum.GateCZ
	}
	return quantum.GateCX
}

// Secret is the hidden linear function f(x) = A·x ⊕ B
type Secret struct {
	A uint64
	B quantum.Bit
}

// OraclePlan is the compiled, immutable gate list for one secret
type OraclePlan struct {
	numQubits  int
	secret     Secret
	style      OracleStyle
	placements []quantum.Operation
}

// CompileOracle places one correlating gate per set bit of A, controlled by
// the input wire and targeting wire n-1, in ascending wire order. When B is 1
// an X on the target follows the correlating gates.
func CompileOracle(secret Secret, n int, style OracleStyle) (*OraclePlan, error) {
	if n < 2 || n-1 > MaxWidth {
		return nil, fmt.Errorf("%w: qubit count %d not in [2, %d]", ErrInput, n, MaxWidth+1)
	}
	if !style.valid() {
		return nil, fmt.Errorf("%w: unknown oracle style %d", ErrInput, style)
	}
	if secret.B != quantum.Zero && secret.B != quantum.One {
		return nil, fmt.Errorf("%w: b must be 0 or 1, got %d", ErrInput, secret.B)
	}

	bits, err := Encode(secret.A, n-1)
	if err != nil {
		return nil, fmt.Errorf("%w: a=%d for %d qubits: %w", ErrInput, secret.A, n, err)
	}

	target := n - 1
	gate := style.correlatingGate()
	placements := make([]quantum.Operation, 0, len(bits)+1)
	for wire, bit := range bits {
		if bit == quantum.One {
			placements = append(placements, quantum.Operation{Kind: gate, Qubits: []int{wire, target}})
		}
	}
	if secret.B == quantum.One {
		placements = append(placements, quantum.Operation{Kind: quantum.GateX, Qubits: []int{target}})
	}

	return &OraclePlan{
		numQubits:  n,
		secret:     secret,
		style:      style,
		placements: placements,
	}, nil
}

// Placements returns a copy of the gate list in application order
func (p *OraclePlan) Placements() []quantum.Operation {
	out := make([]quantum.Operation, len(p.placements))
	for i, op := range p.placements {
		qubits := make([]int, len(op.Qubits))
		copy(qubits, op.Qubits)
		out[i] = quantum.Operation{Kind: op.Kind, Qubits: qubits}
	}
	return out
}

func (p *OraclePlan) NumQubits() int {
	return p.numQubits
}

func (p *OraclePlan) Secret() Secret {
	return p.secret
}

func (p *OraclePlan) Style() OracleStyle {
	return p.style
}

// CorrelatingGates returns the number of CX/CZ placements, i.e. the popcount of A
func (p *OraclePlan) CorrelatingGates() int {
	n := 0
	for _, op := range p.placements {
		if op.Kind.Arity() == 2 {
			n++
		}
	}
	return n
}

// HadamardScope returns the wires wrapped by the two Hadamard layers
func (p *OraclePlan) HadamardScope() []int {
	width := p.numQubits
	if p.style == PhaseKickback {
		width = p.numQubits - 1
	}
	wires := make([]int, width)
	for i := range wires {
		wires[i] = i
	}
	return wires
}
