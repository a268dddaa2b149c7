package validate

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(filepath.Join("..", "..", "schemas", "event.json"), slog.Default())
	require.NoError(t, err)
	return v
}

func TestValidateRaw(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name:    "full event",
			raw:     `{"src_ip":"203.0.113.7","dst_port":22,"protocol":"tcp","message":"Failed password for root","timestamp":"2025-03-01T10:00:00Z"}`,
			wantErr: false,
		},
		{
			name:    "empty object passes, all fields optional",
			raw:     `{}`,
			wantErr: false,
		},
		{
			name:    "numeric epoch timestamp",
			raw:     `{"src_ip":"203.0.113.7","timestamp":1740825600}`,
			wantErr: false,
		},
		{
			name:    "unknown extra fields tolerated",
			raw:     `{"src_ip":"203.0.113.7","sensor":"cowrie-01","session":"abc123"}`,
			wantErr: false,
		},
		{
			name:    "port as string",
			raw:     `{"dst_port":"22"}`,
			wantErr: true,
		},
		{
			name:    "port above range",
			raw:     `{"dst_port":70000}`,
			wantErr: true,
		},
		{
			name:    "negative port",
			raw:     `{"dst_port":-1}`,
			wantErr: true,
		},
		{
			name:    "fractional port",
			raw:     `{"dst_port":22.5}`,
			wantErr: true,
		},
		{
			name:    "source IP as number",
			raw:     `{"src_ip":3232235777}`,
			wantErr: true,
		},
		{
			name:    "timestamp as bool",
			raw:     `{"timestamp":true}`,
			wantErr: true,
		},
		{
			name:    "message as array",
			raw:     `{"message":["a","b"]}`,
			wantErr: true,
		},
		{
			name:    "not valid JSON",
			raw:     `{"src_ip":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRaw([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_MissingSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	_, err := New(path, slog.Default())

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestNew_InvalidSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":`), 0o644))

	_, err := New(path, slog.Default())

	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	v := newTestValidator(t)

	require.NoError(t, v.Reload())

	assert.NoError(t, v.ValidateRaw([]byte(`{"src_ip":"203.0.113.7"}`)))
}
