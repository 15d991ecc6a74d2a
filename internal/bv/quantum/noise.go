package quantum

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// NoiseModel parameterises a noisy execution. A nil model means ideal execution.
// Callers treat it as opaque; only backends interpret the fields.
type NoiseModel struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Depolarizing1Q is the probability of a random Pauli error after each single-qubit gate
	Depolarizing1Q float64 `json:"depolarizing_1q" yaml:"depolarizing_1q"`
	// Depolarizing2Q is the probability of a random two-qubit Pauli error after each two-qubit gate
	Depolarizing2Q float64 `json:"depolarizing_2q" yaml:"depolarizing_2q"`
	// ReadoutError is the probability that a measured bit is reported flipped
	ReadoutError float64 `json:"readout_error" yaml:"readout_error"`
}

// Validate checks that every probability lies in [0, 1]
func (n *NoiseModel) Validate() error {
	if n == nil {
		return nil
	}
	for name, p := range map[string]float64{
		"depolarizing_1q": n.Depolarizing1Q,
		"depolarizing_2q": n.Depolarizing2Q,
		"readout_error":   n.ReadoutError,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("noise model %s must be within [0, 1], got %g", name, p)
		}
	}
	return nil
}

// IsIdeal reports whether the model introduces no errors at all
func (n *NoiseModel) IsIdeal() bool {
	return n == nil || (n.Depolarizing1Q == 0 && n.Depolarizing2Q == 0 && n.ReadoutError == 0)
}

// HasGateErrors reports whether gate errors require per-shot trajectory simulation
func (n *NoiseModel) HasGateErrors() bool {
	return n != nil && (n.Depolarizing1Q > 0 || n.Depolarizing2Q > 0)
}

type noiseProfileFile struct {
	Profiles map[string]*NoiseModel `yaml:"profiles"`
}

// LoadNoiseProfiles reads named noise models from a YAML file of the form
//
//	profiles:
//	  nisq:
//	    depolarizing_1q: 0.001
//	    depolarizing_2q: 0.01
//	    readout_error: 0.02
func LoadNoiseProfiles(path string) (map[string]*NoiseModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read noise profiles: %w", err)
	}
	return ParseNoiseProfiles(data)
}

// ParseNoiseProfiles decodes the YAML noise profile document
func ParseNoiseProfiles(data []byte) (map[string]*NoiseModel, error) {
	var file noiseProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse noise profiles: %w", err)
	}

	profiles := make(map[string]*NoiseModel, len(file.Profiles))
	for name, model := range file.Profiles {
		if model == nil {
			model = &NoiseModel{}
		}
		model.Name = name
		if err := model.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		profiles[name] = model
	}

	return profiles, nil
}
