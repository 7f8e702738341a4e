// Package cli implements the backdrop command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/backdrop/engine/config"
	"github.com/Carmen-Shannon/backdrop/engine/logger"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
)

// appName is the application name used for the root command and window title.
const appName = "backdrop"

// Version is reported by --version. It is set at build time via ldflags.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *zap.Logger

	stderr     io.Writer
	configPath string
	logFile    string
	verbose    bool
	closeLog   func()
}

// New creates a new CLI instance. Logging is configured once the root command parses its flags.
//
// Parameters:
//   - stderr: the console log output
//
// Returns:
//   - *CLI: the CLI
func New(stderr io.Writer) *CLI {
	return &CLI{
		Logger:   zap.NewNop(),
		stderr:   stderr,
		closeLog: func() {},
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Backdrop draws an animated gradient background",
		Long:         `Backdrop renders a slowly drifting procedural gradient from a five-color palette, with blur and temporal smoothing on the GPU and a software fallback.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setupLogging()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" or the user config dir)")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this rotating file")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.configCommand())

	return root
}

// Close flushes and closes the log outputs.
func (c *CLI) Close() {
	c.closeLog()
}

func (c *CLI) setupLogging() error {
	level := "info"
	logFile := c.logFile
	if cfg, err := config.Load(c.configPath); err == nil {
		level = cfg.Logging.Level
		if logFile == "" {
			logFile = cfg.Logging.LogFile
		}
	}
	if c.verbose {
		level = "debug"
	}

	lcfg := logger.Config{Level: level, Console: c.stderr}
	if logFile != "" {
		lcfg.File = logger.DefaultFileConfig(logFile)
	}
	c.Logger, c.closeLog = logger.New(lcfg)
	return nil
}

// loadConfig loads the configuration, replacing its shader settings with settingsPath and its
// palette with palette when set.
func (c *CLI) loadConfig(settingsPath string, palette []string) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if settingsPath != "" {
		s, err := settings.LoadFile(settingsPath)
		if err != nil {
			return nil, err
		}
		cfg.Shader = s
	}
	if len(palette) > 0 {
		cfg.Palette = palette
	}
	c.Logger.Debug("config loaded",
		zap.String("path", c.configPath),
		zap.String("blur_mode", string(cfg.Shader.BlurMode)),
		zap.Float64("render_scale", cfg.Shader.RenderScale),
	)
	return cfg, nil
}

func dimensionError(name string, v int) error {
	return fmt.Errorf("%s must be positive, got %d", name, v)
}
