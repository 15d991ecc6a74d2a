package quantum

import (
	"fmt"
)

// Target describes the native gate set of an execution backend
type Target struct {
	Name       string
	BasisGates []GateKind
}

// Supports reports whether the gate is native on the target. Measurement is
// always supported.
func (t Target) Supports(kind GateKind) bool {
	if kind == GateMeasure {
		return true
	}
	for _, g := range t.BasisGates {
		if g == kind {
			return true
		}
	}
	return false
}

// Transpile rewrites a circuit for the given target: gates that are not native
// are decomposed into native ones and adjacent self-inverse pairs are cancelled.
// The input circuit is not modified.
func Transpile(c *Circuit, target Target) (*Circuit, error) {
	if c == nil {
		return nil, fmt.Errorf("transpile: nil circuit")
	}

	ops := make([]Operation, 0, c.Len())
	for _, op := range c.ops {
		decomposed, err := decompose(op, target)
		if err != nil {
			return nil, err
		}
		ops = append(ops, decomposed...)
	}

	ops = cancelInversePairs(ops)

	out, err := NewCircuit(c.numQubits, c.numClbits)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if err := out.Append(op); err != nil {
			return nil, fmt.Errorf("transpile for %s: %w", target.Name, err)
		}
	}

	return out, nil
}

func decompose(op Operation, target Target) ([]Operation, error) {
	if target.Supports(op.Kind) {
		return []Operation{op.clone()}, nil
	}

	hasH := target.Supports(GateH)
	switch op.Kind {
	case GateCZ:
		// CZ = (I⊗H)·CX·(I⊗H)
		if hasH && target.Supports(GateCX) {
			t := op.Qubits[1]
			return []Operation{
				{Kind: GateH, Qubits: []int{t}},
				{Kind: GateCX, Qubits: []int{op.Qubits[0], t}},
				{Kind: GateH, Qubits: []int{t}},
			}, nil
		}
	case GateCX:
		if hasH && target.Supports(GateCZ) {
			t := op.Qubits[1]
			return []Operation{
				{Kind: GateH, Qubits: []int{t}},
				{Kind: GateCZ, Qubits: []int{op.Qubits[0], t}},
				{Kind: GateH, Qubits: []int{t}},
			}, nil
		}
	}

	return nil, fmt.Errorf("gate %s is not supported by target %s", op.Kind, target.Name)
}

// cancelInversePairs removes pairs of identical self-inverse gates that are
// adjacent on every wire they touch.
func cancelInversePairs(ops []Operation) []Operation {
	removed := make([]bool, len(ops))

	nextOnWire := func(from, qubit int) int {
		for j := from + 1; j < len(ops); j++ {
			if !removed[j] && ops[j].Touches(qubit) {
				return j
			}
		}
		return -1
	}

	for changed := true; changed; {
		changed = false
		for i := range ops {
			if removed[i] || !ops[i].Kind.SelfInverse() {
				continue
			}

			j := -1
			for k, q := range ops[i].Qubits {
				next := nextOnWire(i, q)
				if k == 0 {
					j = next
				} else if next != j {
					j = -1
				}
				if j < 0 {
					break
				}
			}
			if j < 0 || !sameOperation(ops[i], ops[j]) {
				continue
			}

			removed[i], removed[j] = true, true
			changed = true
		}
	}

	out := make([]Operation, 0, len(ops))
	for i, op := range ops {
		if !removed[i] {
			out = append(out, op)
		}
	}
	return out
}

func sameOperation(a, b Operation) bool {
	if a.Kind != b.Kind || len(a.Qubits) != len(b.Qubits) {
		return false
	}
	for i := range a.Qubits {
		if a.Qubits[i] != b.Qubits[i] {
			return false
		}
	}
	return true
}
