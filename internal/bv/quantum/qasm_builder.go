package quantum

import (
	"fmt"
	"sort"
	"strings"
)

// QASMBuilder builds OpenQASM 2.0 programs
type QASMBuilder struct {
	version     string
	includeStmt string
	registers   []string
	body        []string
}

// NewQASMBuilder creates a new OpenQASM circuit builder
func NewQASMBuilder(numQubits int, numClassical int) *QASMBuilder {
	builder := &QASMBuilder{
		version:     "OPENQASM 2.0;",
		includeStmt: "include \"qelib1.inc\";",
		registers:   make([]string, 0),
		body:        make([]string, 0),
	}

	builder.registers = append(builder.registers, fmt.Sprintf("qreg q[%d];", numQubits))
	if numClassical > 0 {
		builder.registers = append(builder.registers, fmt.Sprintf("creg c[%d];", numClassical))
	}

	return builder
}

// AddGate adds a quantum gate statement
func (b *QASMBuilder) AddGate(gate string) {
	b.body = append(b.body, gate)
}

// AddMeasurement adds a measurement statement
func (b *QASMBuilder) AddMeasurement(qubit int, classical int) {
	b.body = append(b.body, fmt.Sprintf("measure q[%d] -> c[%d];", qubit, classical))
}

// Build generates the complete QASM program
func (b *QASMBuilder) Build() string {
	var circuit strings.Builder

	circuit.WriteString(b.version + "\n")
	circuit.WriteString(b.includeStmt + "\n")
	circuit.WriteString("\n")

	for _, reg := range b.registers {
		circuit.WriteString(reg + "\n")
	}
	circuit.WriteString("\n")

	for _, stmt := range b.body {
		circuit.WriteString(stmt + "\n")
	}

	return circuit.String()
}

// MostFrequent returns the outcome with the highest count. Ties resolve to the
// lexicographically smallest outcome so the choice is reproducible.
func MostFrequent(counts map[string]int) (string, int) {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)

	maxCount := 0
	maxOutcome := ""
	for _, outcome := range outcomes {
		if counts[outcome] > maxCount {
			maxCount = counts[outcome]
			maxOutcome = outcome
		}
	}

	return maxOutcome, maxCount
}

// CountsToProbabilities calculates probabilities from measurement counts
func CountsToProbabilities(counts map[string]int) map[string]float64 {
	totalShots := 0
	for _, count := range counts {
		totalShots += count
	}

	probabilities := make(map[string]float64)
	if totalShots == 0 {
		return probabilities
	}
	for outcome, count := range counts {
		probabilities[outcome] = float64(count) / float64(totalShots)
	}

	return probabilities
}
