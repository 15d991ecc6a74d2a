package bv

import (
	"testing"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCircuit(t *testing.T, a uint64, b quantum.Bit, n int, style OracleStyle) *Circuit {
	t.Helper()
	plan, err := CompileOracle(Secret{A: a, B: b}, n, style)
	require.NoError(t, err)
	c, err := BuildCircuit(plan)
	require.NoError(t, err)
	return c
}

func operationStrings(c *quantum.Circuit) []string {
	ops := make([]string, 0, c.Len())
	for _, op := range c.Operations() {
		ops = append(ops, op.String())
	}
	return ops
}

func TestBuildCircuitControlledNot(t *testing.T) {
	c := buildCircuit(t, 3, quantum.Zero, 3, ControlledNot)

	expected := []string{
		"x q[2]",
		"h q[0]", "h q[1]", "h q[2]",
		"cx q[0],q[2]", "cx q[1],q[2]",
		"h q[0]", "h q[1]", "h q[2]",
		"measure q[0] -> c[0]", "measure q[1] -> c[1]",
	}
	assert.Equal(t, expected, operationStrings(c.Quantum()))
}

func TestBuildCircuitPhaseKickback(t *testing.T) {
	c := buildCircuit(t, 2, quantum.One, 3, PhaseKickback)

	expected := []string{
		"x q[2]",
		"h q[0]", "h q[1]",
		"cz q[0],q[2]",
		"x q[2]",
		"h q[0]", "h q[1]",
		"measure q[0] -> c[0]", "measure q[1] -> c[1]",
	}
	assert.Equal(t, expected, operationStrings(c.Quantum()))
}

func TestBuildCircuitSecretDrivesWiresMSBFirst(t *testing.T) {
	tests := []struct {
		name  string
		a     uint64
		n     int
		style OracleStyle
		gates []string
	}{
		{"cx a=1", 1, 4, ControlledNot, []string{"cx q[2],q[3]"}},
		{"cx a=4", 4, 4, ControlledNot, []string{"cx q[0],q[3]"}},
		{"cx a=6", 6, 4, ControlledNot, []string{"cx q[0],q[3]", "cx q[1],q[3]"}},
		{"cz a=1", 1, 4, PhaseKickback, []string{"cz q[2],q[3]"}},
		{"cz a=4", 4, 4, PhaseKickback, []string{"cz q[0],q[3]"}},
		{"cz a=0b1101", 13, 5, PhaseKickback, []string{"cz q[0],q[4]", "cz q[1],q[4]", "cz q[3],q[4]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildCircuit(t, tt.a, quantum.Zero, tt.n, tt.style)

			gates := make([]string, 0)
			for _, op := range c.Quantum().Operations() {
				if op.Kind.Arity() == 2 {
					gates = append(gates, op.String())
				}
			}
			assert.Equal(t, tt.gates, gates)

			bits, err := Encode(tt.a, tt.n-1)
			require.NoError(t, err)
			assert.Equal(t, FormatBits(bits), c.ExpectedOutcome())
		})
	}
}

func TestBuildCircuitShape(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for _, style := range []OracleStyle{ControlledNot, PhaseKickback} {
			c := buildCircuit(t, 1, quantum.One, n, style)

			assert.Equal(t, n, c.NumQubits())
			assert.Equal(t, n-1, c.NumOutputs())
			assert.Equal(t, n-1, c.Quantum().Count(quantum.GateMeasure))
			assert.Equal(t, 2*len(c.Plan().HadamardScope()), c.Quantum().Count(quantum.GateH))
		}
	}
}

func TestBuildCircuitMetadata(t *testing.T) {
	c := buildCircuit(t, 5, quantum.One, 4, ControlledNot)

	assert.Equal(t, "101", c.ExpectedOutcome())
	assert.Equal(t, Secret{A: 5, B: quantum.One}, c.Secret())
	assert.Equal(t, ControlledNot, c.Style())
	assert.Contains(t, c.QASM(), "cx q[2],q[3];")
	assert.Len(t, c.Fingerprint(), 64)

	other := buildCircuit(t, 5, quantum.One, 4, PhaseKickback)
	assert.NotEqual(t, c.Fingerprint(), other.Fingerprint())
}

func TestBuildCircuitIsImmutable(t *testing.T) {
	c := buildCircuit(t, 1, quantum.Zero, 2, ControlledNot)
	before := c.QASM()

	require.NoError(t, c.Quantum().X(0))
	assert.Equal(t, before, c.QASM())
}

func TestBuildCircuitNilPlan(t *testing.T) {
	_, err := BuildCircuit(nil)
	assert.ErrorIs(t, err, ErrInput)
}
