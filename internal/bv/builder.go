package bv

import (
	"fmt"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
)

// Circuit is a built BV circuit together with the secret it encodes. It is
// never modified after BuildCircuit returns and may be run concurrently.
type Circuit struct {
	plan        *OraclePlan
	circuit     *quantum.Circuit
	expected    string
	fingerprint string
}

// BuildCircuit renders the plan: X on the target, Hadamards on the style's
// scope, the oracle, Hadamards again, then wire i measured into clbit i for
// every input wire.
func BuildCircuit(plan *OraclePlan) (*Circuit, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: nil oracle plan", ErrInput)
	}

	n := plan.NumQubits()
	target := n - 1
	scope := plan.HadamardScope()

	qc, err := quantum.NewCircuit(n, n-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	steps := []func() error{
		func() error { return qc.X(target) },
		func() error { return qc.H(scope...) },
		func() error {
			for _, op := range plan.placements {
				if err := qc.Append(op); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return qc.H(scope...) },
		func() error {
			inputs := make([]int, n-1)
			for i := range inputs {
				inputs[i] = i
			}
			return qc.Measure(inputs, inputs)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("%w: build circuit: %w", ErrInput, err)
		}
	}

	bits, err := Encode(plan.secret.A, n-1)
	if err != nil {
		return nil, err
	}

	return &Circuit{
		plan:        plan,
		circuit:     qc,
		expected:    FormatBits(bits),
		fingerprint: quantum.Fingerprint(qc),
	}, nil
}

// Quantum returns a copy of the underlying gate-level circuit
func (c *Circuit) Quantum() *quantum.Circuit {
	return c.circuit.Copy()
}

func (c *Circuit) Plan() *OraclePlan {
	return c.plan
}

func (c *Circuit) NumQubits() int {
	return c.plan.numQubits
}

// NumOutputs is the number of classical bits, always NumQubits()-1
func (c *Circuit) NumOutputs() int {
	return c.circuit.NumClbits()
}

func (c *Circuit) Secret() Secret {
	return c.plan.secret
}

func (c *Circuit) Style() OracleStyle {
	return c.plan.style
}

// ExpectedOutcome is the noiseless measurement result: A rendered MSB first
func (c *Circuit) ExpectedOutcome() string {
	return c.expected
}

// QASM renders the circuit as OpenQASM 2.0
func (c *Circuit) QASM() string {
	return c.circuit.ToQASM()
}

func (c *Circuit) Fingerprint() string {
	return c.fingerprint
}
