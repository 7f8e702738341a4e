package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/backdrop/engine"
	"github.com/Carmen-Shannon/backdrop/engine/config"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
	"github.com/Carmen-Shannon/backdrop/engine/window"
)

// runOpts holds options for the run command.
type runOpts struct {
	settingsPath string
	palette      []string
	profile      bool
	software     bool
}

func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and animate the background on the GPU",
		Long: `Run opens a window and renders the animated gradient into it with WebGPU until the window is
closed, Escape is pressed or the process is interrupted. When the GPU path is unsupported and
fallback.output is configured, a software frame is written there instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(opts.settingsPath, opts.palette)
			if err != nil {
				return err
			}
			if opts.profile {
				cfg.Renderer.Profiling = true
			}
			if opts.software {
				cfg.Renderer.ForceFallbackAdapter = true
			}
			return c.runWindow(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "shader settings YAML overriding the config")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "hex colors overriding the configured palette, padded to five")
	cmd.Flags().BoolVar(&opts.profile, "profile", false, "log frame statistics periodically")
	cmd.Flags().BoolVar(&opts.software, "force-fallback-adapter", false, "request the software GPU adapter")

	return cmd
}

func presentMode(name string) (gpu.PresentMode, error) {
	switch name {
	case "", "vsync":
		return gpu.PresentModeVSync, nil
	case "uncapped":
		return gpu.PresentModeUncapped, nil
	}
	return gpu.PresentModeVSync, fmt.Errorf("unknown present mode %q", name)
}

// runWindow drives the window message loop on the calling goroutine, which must be the main one.
func (c *CLI) runWindow(ctx context.Context, cfg *config.Config) error {
	mode, err := presentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return err
	}
	palette, err := cfg.ShaderPalette()
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	loop := scheduler.NewLoop(scheduler.WithLogger(c.Logger))
	defer loop.Close()

	// the descriptor attaches a metal layer on darwin, which must happen on the main thread
	provider := gpu.NewWGPUProvider(win.SurfaceDescriptor(),
		gpu.WithPresentMode(mode),
		gpu.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
		gpu.WithLogger(c.Logger),
	)
	defer provider.Release()

	eng := engine.NewEngine(provider,
		engine.WithLogger(c.Logger),
		engine.WithLoop(loop),
		engine.WithFrameSource(scheduler.NewTickerSource(loop, scheduler.DefaultDisplayInterval)),
		engine.WithCanvas(win),
		engine.WithSettings(cfg.Shader),
		engine.WithPalette(palette),
		engine.WithRetryDelay(cfg.Renderer.RetryDelay),
		engine.WithProfiling(cfg.Renderer.Profiling),
	)

	var fallbackWG sync.WaitGroup
	defer fallbackWG.Wait()
	eng.OnDiagnostics(func(message string) {
		c.Logger.Debug("diagnostic delivered", zap.String("message", message))
	})
	eng.OnUnsupportedChange(func(unsupported bool) {
		if !unsupported {
			return
		}
		c.Logger.Warn("gpu rendering unsupported", zap.String("state", eng.State().String()))
		if cfg.Fallback.Output == "" {
			return
		}
		width, height := win.FramebufferSize()
		snapshot := *cfg
		snapshot.Shader = eng.Settings()
		fallbackWG.Go(func() {
			err := c.renderPNG(ctx, &snapshot, renderOpts{
				output: cfg.Fallback.Output,
				width:  width,
				height: height,
			})
			if err != nil {
				c.Logger.Error("fallback frame failed", zap.Error(err))
			}
		})
	})

	eng.Start()
	defer func() {
		eng.Dispose()
		// completions posted during disposal release their sessions
		loop.RunPending()
	}()

	start := time.Now()
	win.SetUpdateCallback(func() { loop.RunPending() })
	win.ProcessMessages(ctx)

	_, frames := eng.LastFrame()
	c.Logger.Info("window closed",
		zap.Duration("uptime", time.Since(start)),
		zap.Int("frames", frames),
		zap.Stringer("state", eng.State()),
	)
	return ctx.Err()
}
