package quantum

import "fmt"

// BuildBellPairCircuit creates a measured Bell pair (EPR pair) circuit
func BuildBellPairCircuit() *Circuit {
	c, _ := NewCircuit(2, 2)

	// |Φ+⟩ = (|00⟩ + |11⟩)/√2
	_ = c.H(0)
	_ = c.CX(0, 1)
	_ = c.Measure([]int{0, 1}, []int{0, 1})

	return c
}

// BuildGHZStateCircuit creates a measured GHZ state over numQubits wires
func BuildGHZStateCircuit(numQubits int) (*Circuit, error) {
	if numQubits < 2 {
		return nil, fmt.Errorf("GHZ state requires at least 2 qubits")
	}

	c, err := NewCircuit(numQubits, numQubits)
	if err != nil {
		return nil, err
	}

	_ = c.H(0)
	for i := 1; i < numQubits; i++ {
		_ = c.CX(0, i)
	}

	wires := make([]int, numQubits)
	for i := range wires {
		wires[i] = i
	}
	_ = c.Measure(wires, wires)

	return c, nil
}
