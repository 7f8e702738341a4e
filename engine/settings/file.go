package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads settings from a YAML file. Fields missing from the file keep their defaults and
// the result is sanitized.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - ShaderSettings: the loaded settings
//   - error: error if the file cannot be read or parsed
func LoadFile(path string) (ShaderSettings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return Sanitize(s), nil
}

// SaveFile writes s as YAML, creating the parent directory if needed.
//
// Parameters:
//   - path: the destination file
//   - s: the settings to write
//
// Returns:
//   - error: error if the file cannot be written
func SaveFile(path string, s ShaderSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(Sanitize(s))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
