package modelstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "classifier.json")

	state := classify.State{
		Version: 1,
		Classes: []classify.ClassParams{
			{Class: "brute_force", Means: [5]float64{50, 2, 100, 10, 0.8}, Stddevs: [5]float64{10, 1, 50, 5, 0.1}},
			{Class: "normal", Means: [5]float64{5, 2, 300, 60, 0.05}, Stddevs: [5]float64{2, 1, 100, 30, 0.02}},
		},
	}

	require.NoError(t, Save(path, state))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// No temp file stays behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.json")
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	first := classify.State{Version: 1, Classes: []classify.ClassParams{{Class: "a"}}}
	second := classify.State{Version: 1, Classes: []classify.ClassParams{{Class: "b"}}}

	require.NoError(t, Save(path, first))
	require.NoError(t, Save(path, second))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}
