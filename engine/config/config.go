// Package config handles application configuration loading and management.
package config

import (
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

// Config holds all application settings.
type Config struct {
	Window   WindowConfig            `yaml:"window"`
	Renderer RendererConfig          `yaml:"renderer"`
	Shader   settings.ShaderSettings `yaml:"shader"`
	Palette  []string                `yaml:"palette"`
	Fallback FallbackConfig          `yaml:"fallback"`
	Logging  LoggingConfig           `yaml:"logging"`
}

// WindowConfig holds the window the background is drawn into.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig holds GPU setup choices.
type RendererConfig struct {
	PresentMode          string        `yaml:"present_mode"` // vsync or uncapped
	ForceFallbackAdapter bool          `yaml:"force_fallback_adapter"`
	RetryDelay           time.Duration `yaml:"retry_delay"`
	Profiling            bool          `yaml:"profiling"`
}

// FallbackConfig holds the software renderer used when the GPU path is unsupported.
type FallbackConfig struct {
	Output  string `yaml:"output"` // PNG written when unsupported; empty disables it
	Workers int    `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "backdrop",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			RetryDelay:  250 * time.Millisecond,
		},
		Shader:  settings.Default(),
		Palette: color.FallbackSet().Hex(),
		Fallback: FallbackConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ShaderPalette parses the configured palette. An empty list selects the fallback set.
//
// Returns:
//   - color.ShaderColorSet: the palette
//   - error: error if a color is not a hex string
func (c *Config) ShaderPalette() (color.ShaderColorSet, error) {
	return color.ParseHexPalette(c.Palette)
}
