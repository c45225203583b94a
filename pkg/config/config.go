// Package config provides YAML-based configuration loading with environment
// variable expansion, and atomic saving.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return validate(target)
}

// LoadOptional behaves like Load but keeps the values already in target when
// filename does not exist. The result is validated either way.
func LoadOptional[T any](filename string, target *T) error {
	if filename == "" {
		return validate(target)
	}
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return validate(target)
	}
	return Load(filename, target)
}

// Save validates source and writes it to filename as YAML, replacing any
// existing file atomically.
func Save[T any](filename string, source *T) error {
	if err := validate(source); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(source); err != nil {
		return fmt.Errorf("failed to encode config %s: %w", filename, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config %s: %w", filename, err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := atomic.WriteFile(filename, &buf); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	return nil
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
