package bv

import (
	"context"
	"fmt"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
)

// Algorithm is the lifecycle shared by oracle algorithms: set the hidden
// input, build the circuit once, evaluate it, and clear it to start over.
type Algorithm interface {
	SetInput(inputs []uint64) error
	ConstructCircuit() (*Circuit, error)
	ComputeResult(ctx context.Context) (*Evaluation, error)
	ClearCircuit()
}

// BernsteinVazirani recovers the secret of f(x) = a·x ⊕ b with one oracle query
type BernsteinVazirani struct {
	numQubits int
	style     OracleStyle
	shots     int
	evaluator *Evaluator

	secret  *Secret
	circuit *Circuit
	result  *Evaluation
}

var _ Algorithm = (*BernsteinVazirani)(nil)

// NewBernsteinVazirani creates the algorithm for n qubits: n-1 input wires and
// one target. A single shot is enough for a noiseless backend.
func NewBernsteinVazirani(numQubits int, style OracleStyle, evaluator *Evaluator) (*BernsteinVazirani, error) {
	if numQubits < 2 || numQubits-1 > MaxWidth {
		return nil, fmt.Errorf("%w: qubit count %d not in [2, %d]", ErrConfig, numQubits, MaxWidth+1)
	}
	if !style.valid() {
		return nil, fmt.Errorf("%w: unknown oracle style %d", ErrConfig, style)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is required", ErrConfig)
	}

	return &BernsteinVazirani{
		numQubits: numQubits,
		style:     style,
		shots:     1,
		evaluator: evaluator,
	}, nil
}

// WithShots sets the number of shots ComputeResult executes
func (bv *BernsteinVazirani) WithShots(shots int) *BernsteinVazirani {
	bv.shots = shots
	return bv
}

// SetInput takes [a, b]. The secret cannot change while a circuit is built.
func (bv *BernsteinVazirani) SetInput(inputs []uint64) error {
	if len(inputs) != 2 {
		return fmt.Errorf("%w: expected [a, b], got %d values", ErrInput, len(inputs))
	}
	a, b := inputs[0], inputs[1]
	if b > 1 {
		return fmt.Errorf("%w: b must be 0 or 1, got %d", ErrInput, b)
	}
	if _, err := Encode(a, bv.numQubits-1); err != nil {
		return fmt.Errorf("%w: a=%d: %w", ErrInput, a, err)
	}
	if bv.circuit != nil {
		return fmt.Errorf("%w: clear the circuit before changing the secret", ErrInput)
	}

	bv.secret = &Secret{A: a, B: quantum.Bit(b)}
	bv.result = nil
	return nil
}

// ConstructCircuit builds the circuit for the current secret. Repeated calls
// return the same circuit.
func (bv *BernsteinVazirani) ConstructCircuit() (*Circuit, error) {
	if bv.secret == nil {
		return nil, ErrInputNotSet
	}
	if bv.circuit != nil {
		return bv.circuit, nil
	}

	plan, err := CompileOracle(*bv.secret, bv.numQubits, bv.style)
	if err != nil {
		return nil, err
	}
	circuit, err := BuildCircuit(plan)
	if err != nil {
		return nil, err
	}

	bv.circuit = circuit
	return circuit, nil
}

// ComputeResult evaluates the built circuit with no noise
func (bv *BernsteinVazirani) ComputeResult(ctx context.Context) (*Evaluation, error) {
	if bv.circuit == nil {
		return nil, ErrNotConstructed
	}

	evaluation, err := bv.evaluator.Run(ctx, bv.circuit, bv.shots, nil)
	if err != nil {
		return nil, err
	}

	bv.result = evaluation
	return evaluation, nil
}

// ARecovered returns a as decoded from the most frequent outcome
func (bv *BernsteinVazirani) ARecovered() (uint64, bool) {
	if bv.result == nil {
		return 0, false
	}
	return bv.result.RecoveredA, true
}

// Function renders the recovered function as "f(x)=<bits>x+<b>"
func (bv *BernsteinVazirani) Function() (string, error) {
	if bv.result == nil {
		return "", ErrNotConstructed
	}
	return fmt.Sprintf("f(x)=%sx+%d", bv.result.MostFrequent, bv.secret.B), nil
}

// ClearCircuit drops the built circuit and any result; the secret is kept
func (bv *BernsteinVazirani) ClearCircuit() {
	bv.circuit = nil
	bv.result = nil
}

func (bv *BernsteinVazirani) NumQubits() int {
	return bv.numQubits
}
