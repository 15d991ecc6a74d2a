package quantum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilesYAML = `
profiles:
  ideal: {}
  nisq:
    depolarizing_1q: 0.001
    depolarizing_2q: 0.01
    readout_error: 0.02
  readout:
    readout_error: 0.1
`

func TestParseNoiseProfiles(t *testing.T) {
	profiles, err := ParseNoiseProfiles([]byte(profilesYAML))
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	nisq := profiles["nisq"]
	require.NotNil(t, nisq)
	assert.Equal(t, "nisq", nisq.Name)
	assert.InDelta(t, 0.001, nisq.Depolarizing1Q, 1e-12)
	assert.InDelta(t, 0.01, nisq.Depolarizing2Q, 1e-12)
	assert.InDelta(t, 0.02, nisq.ReadoutError, 1e-12)
	assert.True(t, nisq.HasGateErrors())

	assert.True(t, profiles["ideal"].IsIdeal())
	assert.False(t, profiles["readout"].IsIdeal())
	assert.False(t, profiles["readout"].HasGateErrors())
}

func TestParseNoiseProfilesRejectsInvalid(t *testing.T) {
	_, err := ParseNoiseProfiles([]byte("profiles:\n  bad:\n    readout_error: 1.5\n"))
	assert.Error(t, err)

	_, err = ParseNoiseProfiles([]byte("profiles: [1, 2"))
	assert.Error(t, err)
}

func TestLoadNoiseProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profilesYAML), 0o600))

	profiles, err := LoadNoiseProfiles(path)
	require.NoError(t, err)
	assert.Contains(t, profiles, "readout")

	_, err = LoadNoiseProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNilNoiseModel(t *testing.T) {
	var nm *NoiseModel
	assert.NoError(t, nm.Validate())
	assert.True(t, nm.IsIdeal())
	assert.False(t, nm.HasGateErrors())
}
