package bv

import (
	"testing"

	"github.com/jaskrrish/Go-BV/internal/bv/quantum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileOraclePlacements(t *testing.T) {
	tests := []struct {
		name     string
		secret   Secret
		n        int
		style    OracleStyle
		expected []string
	}{
		{
			name:     "a=5 b=1 controlled-not",
			secret:   Secret{A: 5, B: quantum.One},
			n:        4,
			style:    ControlledNot,
			expected: []string{"cx q[0],q[3]", "cx q[2],q[3]", "x q[3]"},
		},
		{
			name:     "a=5 b=1 phase kickback",
			secret:   Secret{A: 5, B: quantum.One},
			n:        4,
			style:    PhaseKickback,
			expected: []string{"cz q[0],q[3]", "cz q[2],q[3]", "x q[3]"},
		},
		{
			name:     "a=3 b=0",
			secret:   Secret{A: 3, B: quantum.Zero},
			n:        3,
			style:    ControlledNot,
			expected: []string{"cx q[0],q[2]", "cx q[1],q[2]"},
		},
		{
			name:     "a=0 b=1 only corrects",
			secret:   Secret{A: 0, B: quantum.One},
			n:        5,
			style:    ControlledNot,
			expected: []string{"x q[4]"},
		},
		{
			name:     "a=0 b=0 is empty",
			secret:   Secret{},
			n:        2,
			style:    PhaseKickback,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := CompileOracle(tt.secret, tt.n, tt.style)
			require.NoError(t, err)

			got := make([]string, 0)
			for _, op := range plan.Placements() {
				got = append(got, op.String())
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.n, plan.NumQubits())
			assert.Equal(t, tt.secret, plan.Secret())
			assert.Equal(t, tt.style, plan.Style())
		})
	}
}

func TestCompileOracleGateCounts(t *testing.T) {
	for n := 2; n <= 12; n++ {
		zero, err := CompileOracle(Secret{A: 0}, n, ControlledNot)
		require.NoError(t, err)
		assert.Zero(t, zero.CorrelatingGates(), "n=%d", n)

		full, err := CompileOracle(Secret{A: 1<<uint(n-1) - 1}, n, PhaseKickback)
		require.NoError(t, err)
		assert.Equal(t, n-1, full.CorrelatingGates(), "n=%d", n)
	}
}

func TestCompileOracleWireRoles(t *testing.T) {
	n := 7
	for a := uint64(0); a < 1<<uint(n-1); a++ {
		plan, err := CompileOracle(Secret{A: a, B: quantum.One}, n, ControlledNot)
		require.NoError(t, err)

		placements := plan.Placements()
		for i, op := range placements {
			if op.Kind.Arity() == 2 {
				assert.NotEqual(t, n-1, op.Qubits[0], "target wire used as control")
				assert.Equal(t, n-1, op.Qubits[1])
				if i > 0 {
					assert.Greater(t, op.Qubits[0], placements[i-1].Qubits[0], "controls must ascend")
				}
			}
		}

		last := placements[len(placements)-1]
		assert.Equal(t, quantum.GateX, last.Kind)
		assert.Equal(t, []int{n - 1}, last.Qubits)
	}
}

func TestCompileOracleErrors(t *testing.T) {
	tests := []struct {
		name    string
		secret  Secret
		n       int
		style   OracleStyle
		isRange bool
	}{
		{"Too few qubits", Secret{}, 1, ControlledNot, false},
		{"Too many qubits", Secret{}, MaxWidth + 2, ControlledNot, false},
		{"a out of range", Secret{A: 8}, 4, ControlledNot, true},
		{"b not a bit", Secret{B: quantum.Bit(2)}, 4, ControlledNot, false},
		{"Unknown style", Secret{}, 4, OracleStyle(9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := CompileOracle(tt.secret, tt.n, tt.style)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, ErrInput)
			if tt.isRange {
				assert.ErrorIs(t, err, ErrRange)
			}
		})
	}
}

func TestPlacementsAreCopies(t *testing.T) {
	plan, err := CompileOracle(Secret{A: 1}, 2, ControlledNot)
	require.NoError(t, err)

	placements := plan.Placements()
	placements[0].Qubits[0] = 1

	assert.Equal(t, []int{0, 1}, plan.Placements()[0].Qubits)
}

func TestHadamardScope(t *testing.T) {
	cx, err := CompileOracle(Secret{}, 4, ControlledNot)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, cx.HadamardScope())

	cz, err := CompileOracle(Secret{}, 4, PhaseKickback)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, cz.HadamardScope())
}

func TestParseOracleStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected OracleStyle
		valid    bool
	}{
		{"cx", ControlledNot, true},
		{"", ControlledNot, true},
		{"controlled_not", ControlledNot, true},
		{"CZ", PhaseKickback, true},
		{"phase_kickback", PhaseKickback, true},
		{"swap", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			style, err := ParseOracleStyle(tt.input)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, style)
		})
	}

	assert.Equal(t, "cx", ControlledNot.String())
	assert.Equal(t, "cz", PhaseKickback.String())
	assert.Equal(t, "unknown", OracleStyle(5).String())
}
