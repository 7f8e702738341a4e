package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/backdrop/common"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/target"
	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
)

// planReport is the YAML document printed by the plan command.
type planReport struct {
	Client  common.Size         `yaml:"client"`
	DPR     float64             `yaml:"device_pixel_ratio"`
	Backing common.Size         `yaml:"backing"`
	Targets target.TargetConfig `yaml:"targets"`
	Chain   []common.Size       `yaml:"blur_chain,omitempty"`
	Passes  []string            `yaml:"passes"`
}

func (c *CLI) planCommand() *cobra.Command {
	var (
		width, height int
		dpr           float64
		settingsPath  string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the render target plan for a canvas size",
		Long: `Plan derives the backing size and render target configuration the GPU renderer would allocate
for a canvas, without touching the GPU.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(settingsPath, nil)
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.Window.Width
			}
			if height <= 0 {
				height = cfg.Window.Height
			}
			if width <= 0 {
				return dimensionError("width", width)
			}
			if height <= 0 {
				return dimensionError("height", height)
			}

			canvas := scheduler.FixedCanvas{Width: width, Height: height, DPR: dpr}
			bw, bh := scheduler.BackingSize(canvas, cfg.Shader.MaxDevicePixelRatio, cfg.Shader.RenderScale)
			tc := target.Plan(bw, bh, cfg.Shader)

			report := planReport{
				Client:  common.Size{Width: width, Height: height},
				DPR:     dpr,
				Backing: common.Size{Width: bw, Height: bh},
				Targets: tc,
				Chain:   tc.ChainSizes(),
				Passes:  passNames(tc),
			}
			out, err := yaml.Marshal(report)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "canvas client width (default: window width)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas client height (default: window height)")
	cmd.Flags().Float64Var(&dpr, "dpr", 1, "device pixel ratio")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "shader settings YAML overriding the config")

	return cmd
}

// passNames lists the passes a frame with tc runs, in order. Chains cut short at 1x1 run fewer passes.
func passNames(tc target.TargetConfig) []string {
	passes := []string{pipeline.PassScene.String()}
	n := len(tc.ChainSizes())
	switch tc.Blur().(type) {
	case target.DualKawase:
		for i := range n {
			passes = append(passes, fmt.Sprintf("%s %d", pipeline.PassDualDown, i))
		}
		for i := n - 1; i >= 0; i-- {
			passes = append(passes, fmt.Sprintf("%s %d", pipeline.PassDualUp, i))
		}
	case target.MipPyramid:
		for i := range n {
			passes = append(passes, fmt.Sprintf("%s %d", pipeline.PassMipDown, i))
		}
		passes = append(passes, pipeline.PassMipComposite.String())
	}
	if tc.TemporalEnabled {
		passes = append(passes, pipeline.PassTemporal.String())
	}
	return append(passes, pipeline.PassComposite.String())
}
