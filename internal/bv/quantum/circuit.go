package quantum

import (
	"errors"
	"fmt"
)

var (
	// ErrQubitOutOfRange is returned when a gate references a wire outside the circuit
	ErrQubitOutOfRange = errors.New("qubit index out of range")
	// ErrClbitOutOfRange is returned when a measurement targets a missing classical bit
	ErrClbitOutOfRange = errors.New("classical bit index out of range")
)

// Circuit is a gate-level description of a quantum program with a fixed
// number of qubit wires and classical output bits.
type Circuit struct {
	numQubits int
	numClbits int
	ops       []Operation
}

// NewCircuit creates an empty circuit
func NewCircuit(numQubits, numClbits int) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("circuit needs at least one qubit, got %d", numQubits)
	}
	if numClbits < 0 {
		return nil, fmt.Errorf("classical register size must be non-negative, got %d", numClbits)
	}

	return &Circuit{
		numQubits: numQubits,
		numClbits: numClbits,
		ops:       make([]Operation, 0),
	}, nil
}

// NumQubits returns the number of qubit wires
func (c *Circuit) NumQubits() int {
	return c.numQubits
}

// NumClbits returns the number of classical output bits
func (c *Circuit) NumClbits() int {
	return c.numClbits
}

// Operations returns a copy of the placed operations in program order
func (c *Circuit) Operations() []Operation {
	ops := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		ops[i] = op.clone()
	}
	return ops
}

// Len returns the number of placed operations
func (c *Circuit) Len() int {
	return len(c.ops)
}

// Measurements returns the qubit→clbit mapping of every measurement in program order
func (c *Circuit) Measurements() []Operation {
	measurements := make([]Operation, 0)
	for _, op := range c.ops {
		if op.Kind == GateMeasure {
			measurements = append(measurements, op.clone())
		}
	}
	return measurements
}

// Count returns how many operations of the given kind the circuit contains
func (c *Circuit) Count(kind GateKind) int {
	n := 0
	for _, op := range c.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Append validates and places an operation
func (c *Circuit) Append(op Operation) error {
	if op.Kind.Arity() == 0 {
		return fmt.Errorf("unsupported gate %q", op.Kind)
	}
	if len(op.Qubits) != op.Kind.Arity() {
		return fmt.Errorf("gate %s expects %d qubit(s), got %d", op.Kind, op.Kind.Arity(), len(op.Qubits))
	}
	for _, q := range op.Qubits {
		if err := c.checkQubit(q); err != nil {
			return err
		}
	}
	if len(op.Qubits) == 2 && op.Qubits[0] == op.Qubits[1] {
		return fmt.Errorf("gate %s: control and target must differ (both %d)", op.Kind, op.Qubits[0])
	}
	if op.Kind == GateMeasure {
		if op.Clbit < 0 || op.Clbit >= c.numClbits {
			return fmt.Errorf("%w: c[%d] (register size %d)", ErrClbitOutOfRange, op.Clbit, c.numClbits)
		}
	}

	c.ops = append(c.ops, op.clone())
	return nil
}

// X applies a Pauli-X gate
func (c *Circuit) X(qubit int) error {
	return c.Append(Operation{Kind: GateX, Qubits: []int{qubit}})
}

// H applies a Hadamard gate to every listed qubit
func (c *Circuit) H(qubits ...int) error {
	for _, q := range qubits {
		if err := c.Append(Operation{Kind: GateH, Qubits: []int{q}}); err != nil {
			return err
		}
	}
	return nil
}

// CX applies a controlled-NOT gate
func (c *Circuit) CX(control, target int) error {
	return c.Append(Operation{Kind: GateCX, Qubits: []int{control, target}})
}

// CZ applies a controlled-Z gate
func (c *Circuit) CZ(control, target int) error {
	return c.Append(Operation{Kind: GateCZ, Qubits: []int{control, target}})
}

// Measure measures qubits[i] into clbits[i]
func (c *Circuit) Measure(qubits, clbits []int) error {
	if len(qubits) != len(clbits) {
		return fmt.Errorf("measure: %d qubits but %d classical bits", len(qubits), len(clbits))
	}
	for i := range qubits {
		if err := c.Append(Operation{Kind: GateMeasure, Qubits: []int{qubits[i]}, Clbit: clbits[i]}); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of the circuit
func (c *Circuit) Copy() *Circuit {
	return &Circuit{
		numQubits: c.numQubits,
		numClbits: c.numClbits,
		ops:       c.Operations(),
	}
}

// ToQASM renders the circuit as an OpenQASM 2.0 program
func (c *Circuit) ToQASM() string {
	builder := NewQASMBuilder(c.numQubits, c.numClbits)
	for _, op := range c.ops {
		if op.Kind == GateMeasure {
			builder.AddMeasurement(op.Qubits[0], op.Clbit)
			continue
		}
		builder.AddGate(op.String() + ";")
	}
	return builder.Build()
}

func (c *Circuit) checkQubit(qubit int) error {
	if qubit < 0 || qubit >= c.numQubits {
		return fmt.Errorf("%w: q[%d] (circuit has %d qubits)", ErrQubitOutOfRange, qubit, c.numQubits)
	}
	return nil
}
