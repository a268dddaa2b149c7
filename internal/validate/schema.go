// Package validate checks inbound raw events against the event JSON schema
// before they enter the analysis pipeline.
package validate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator implements JSON schema validation for raw events.
type Validator struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	schema *jsonschema.Schema
}

// New creates a validator from the schema file at schemaPath.
func New(schemaPath string, logger *slog.Logger) (*Validator, error) {
	schema, err := compileSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Schema validator initialized", "schema_path", schemaPath)

	return &Validator{
		path:   schemaPath,
		logger: logger,
		schema: schema,
	}, nil
}

func compileSchema(path string) (*jsonschema.Schema, error) {
	schemaData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("event.json", strings.NewReader(string(schemaData))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("event.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// ValidateRaw validates one raw JSON event against the schema. Events with
// absent fields pass; events whose present fields have the wrong shape fail.
func (v *Validator) ValidateRaw(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.schema.Validate(value); err != nil {
		v.logger.Warn("Event validation failed", "error", err.Error())
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Reload recompiles the schema from disk (useful for development).
func (v *Validator) Reload() error {
	schema, err := compileSchema(v.path)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.schema = schema
	v.mu.Unlock()

	v.logger.Info("Schema reloaded successfully", "schema_path", v.path)
	return nil
}
