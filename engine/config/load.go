package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working and config directories.
const FileName = "backdrop.yaml"

// Load loads configuration with priority: defaults < file. Command line flags are applied on top
// by the caller. An empty path searches the standard locations; a missing file there is not an error.
//
// Parameters:
//   - path: an explicit config file, or ""
//
// Returns:
//   - *Config: the configuration, with sanitized shader settings
//   - error: error if the file cannot be read or parsed
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	cfg.Shader = settings.Sanitize(cfg.Shader)
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Backdrop")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Backdrop")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "backdrop")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "backdrop")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
