// Package modelstore persists trained classifier parameters as JSON so the
// analyzer can restore a model across restarts instead of retraining.
package modelstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/classify"
)

// Save writes the model state to path, creating parent directories as needed.
func Save(path string, state classify.State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model state: %w", err)
	}

	// Write to a sibling temp file first so a crash mid-write never leaves a
	// truncated model behind.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize model state: %w", err)
	}

	return nil
}

// Load reads a previously saved model state from path.
func Load(path string) (classify.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return classify.State{}, fmt.Errorf("failed to read model state: %w", err)
	}

	var state classify.State
	if err := json.Unmarshal(data, &state); err != nil {
		return classify.State{}, fmt.Errorf("failed to parse model state %s: %w", path, err)
	}

	return state, nil
}
