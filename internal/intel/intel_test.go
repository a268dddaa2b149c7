package intel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_SeedSources(t *testing.T) {
	s := NewSet()

	assert.True(t, s.Contains("192.168.1.100"))
	assert.True(t, s.Contains("10.0.0.50"))
	assert.True(t, s.Contains("172.16.0.10"))
	assert.False(t, s.Contains("203.0.113.7"))
	assert.Equal(t, 3, s.Len())
}

func TestSet_AddIgnoresEmpty(t *testing.T) {
	s := NewEmptySet()
	s.Add("203.0.113.7", "", "198.51.100.2")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("203.0.113.7"))
	assert.False(t, s.Contains(""))
}

func TestSet_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intel.yaml")
	content := "known_malicious:\n  - 203.0.113.7\n  - 198.51.100.2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := NewSet()
	n, err := s.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.True(t, s.Contains("203.0.113.7"))
	assert.True(t, s.Contains("198.51.100.2"))
	// Seeds survive the merge.
	assert.True(t, s.Contains("192.168.1.100"))
}

func TestSet_LoadFile_Missing(t *testing.T) {
	s := NewSet()
	_, err := s.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSet_LoadFile_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("known_malicious: {nope"), 0o644))

	s := NewSet()
	_, err := s.LoadFile(path)
	assert.Error(t, err)
}
