package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuit(t *testing.T) {
	tests := []struct {
		name        string
		qubits      int
		clbits      int
		shouldError bool
	}{
		{"Single qubit", 1, 0, false},
		{"Qubits and clbits", 4, 3, false},
		{"No qubits", 0, 0, true},
		{"Negative clbits", 2, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCircuit(tt.qubits, tt.clbits)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.qubits, c.NumQubits())
			assert.Equal(t, tt.clbits, c.NumClbits())
			assert.Zero(t, c.Len())
		})
	}
}

func TestCircuitAppendValidation(t *testing.T) {
	c, err := NewCircuit(3, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, c.X(3), ErrQubitOutOfRange)
	assert.ErrorIs(t, c.H(-1), ErrQubitOutOfRange)
	assert.ErrorIs(t, c.CX(0, 5), ErrQubitOutOfRange)
	assert.Error(t, c.CZ(1, 1))
	assert.ErrorIs(t, c.Measure([]int{0}, []int{2}), ErrClbitOutOfRange)
	assert.Error(t, c.Measure([]int{0, 1}, []int{0}))
	assert.Error(t, c.Append(Operation{Kind: GateKind("rz"), Qubits: []int{0}}))
	assert.Error(t, c.Append(Operation{Kind: GateCX, Qubits: []int{0}}))

	assert.Zero(t, c.Len(), "rejected operations must not be placed")
}

func TestCircuitOperationsAreCopies(t *testing.T) {
	c, err := NewCircuit(2, 0)
	require.NoError(t, err)
	require.NoError(t, c.CX(0, 1))

	ops := c.Operations()
	ops[0].Qubits[0] = 1

	assert.Equal(t, []int{0, 1}, c.Operations()[0].Qubits)

	cp := c.Copy()
	require.NoError(t, cp.H(0))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, cp.Len())
}

func TestCircuitCountAndMeasurements(t *testing.T) {
	c, err := NewCircuit(3, 2)
	require.NoError(t, err)
	require.NoError(t, c.H(0, 1, 2))
	require.NoError(t, c.CZ(0, 2))
	require.NoError(t, c.Measure([]int{0, 1}, []int{0, 1}))

	assert.Equal(t, 3, c.Count(GateH))
	assert.Equal(t, 1, c.Count(GateCZ))
	assert.Equal(t, 0, c.Count(GateCX))

	measurements := c.Measurements()
	require.Len(t, measurements, 2)
	assert.Equal(t, 1, measurements[1].Qubits[0])
	assert.Equal(t, 1, measurements[1].Clbit)
}

func TestCircuitToQASM(t *testing.T) {
	c, err := NewCircuit(3, 2)
	require.NoError(t, err)
	require.NoError(t, c.X(2))
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 2))
	require.NoError(t, c.Measure([]int{0, 1}, []int{0, 1}))

	expected := "OPENQASM 2.0;\n" +
		"include \"qelib1.inc\";\n" +
		"\n" +
		"qreg q[3];\n" +
		"creg c[2];\n" +
		"\n" +
		"x q[2];\n" +
		"h q[0];\n" +
		"cx q[0],q[2];\n" +
		"measure q[0] -> c[0];\n" +
		"measure q[1] -> c[1];\n"

	assert.Equal(t, expected, c.ToQASM())
}

func TestQASMWithoutClassicalRegister(t *testing.T) {
	c, err := NewCircuit(1, 0)
	require.NoError(t, err)
	require.NoError(t, c.H(0))

	assert.NotContains(t, c.ToQASM(), "creg")
}

func TestMostFrequent(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[string]int
		outcome  string
		expected int
	}{
		{"Single outcome", map[string]int{"101": 10}, "101", 10},
		{"Clear winner", map[string]int{"00": 3, "11": 9, "01": 1}, "11", 9},
		{"Tie resolves lexicographically", map[string]int{"11": 5, "01": 5}, "01", 5},
		{"Empty", map[string]int{}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, count := MostFrequent(tt.counts)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.expected, count)
		})
	}
}

func TestCountsToProbabilities(t *testing.T) {
	probs := CountsToProbabilities(map[string]int{"0": 1, "1": 3})
	assert.InDelta(t, 0.25, probs["0"], 1e-12)
	assert.InDelta(t, 0.75, probs["1"], 1e-12)

	assert.Empty(t, CountsToProbabilities(map[string]int{}))
}

func TestFingerprint(t *testing.T) {
	a := BuildBellPairCircuit()
	b := BuildBellPairCircuit()

	fp := Fingerprint(a)
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint(b))

	require.NoError(t, b.X(0))
	assert.NotEqual(t, fp, Fingerprint(b))
}
