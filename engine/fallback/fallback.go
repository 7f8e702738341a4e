// Package fallback renders the gradient on the CPU for hosts where the GPU path is unsupported.
package fallback

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/backdrop/engine/color"
	"github.com/Carmen-Shannon/backdrop/engine/gradient"
	"github.com/Carmen-Shannon/backdrop/engine/settings"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Frame describes one software frame.
type Frame struct {
	Width    int
	Height   int
	Time     float64
	Palette  color.ShaderColorSet
	Settings settings.ShaderSettings
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	workers    int
	bandHeight int
	log        *zap.Logger

	mu     sync.Mutex
	pool   worker.DynamicWorkerPool
	taskID int
	closed bool
}

// Renderer draws a frame of the gradient into an image. The scene is evaluated at the render scale
// in horizontal bands on a worker pool, composited over the theme base and upscaled to full size.
type Renderer interface {
	// Render draws f.
	//
	// Parameters:
	//   - ctx: cancels the render between bands
	//   - f: the frame to draw
	//
	// Returns:
	//   - *image.RGBA: the frame at f.Width x f.Height
	//   - error: ctx.Err() if cancelled, or an error for a closed renderer
	Render(ctx context.Context, f Frame) (*image.RGBA, error)

	// Close stops the worker pool. It is idempotent.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a software Renderer.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		workers:    4,
		bandHeight: 16,
		log:        zap.NewNop(),
	}
	for _, opt := range options {
		opt(r)
	}
	r.pool = worker.NewDynamicWorkerPool(r.workers, 256, time.Second)
	return r
}

// ScaledSize returns the size the scene is evaluated at before upscaling.
//
// Parameters:
//   - width: the output width
//   - height: the output height
//   - renderScale: the resolution scale, clamped to [0.2, 1]
//
// Returns:
//   - int: the scaled width, at least 1
//   - int: the scaled height, at least 1
func ScaledSize(width, height int, renderScale float64) (int, int) {
	scale := min(max(renderScale, 0.2), 1)
	if math.IsNaN(renderScale) {
		scale = 1
	}
	return max(int(float64(width)*scale), 1), max(int(float64(height)*scale), 1)
}

func (r *renderer) Render(ctx context.Context, f Frame) (*image.RGBA, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, fmt.Errorf("fallback renderer closed")
	}
	r.mu.Unlock()

	width, height := max(f.Width, 1), max(f.Height, 1)
	s := settings.Sanitize(f.Settings)
	sw, sh := ScaledSize(width, height, s.RenderScale)

	scene := gradient.NewScene(gradient.Palette(f.Palette, s), s, f.Time)
	base := gradient.BaseColor(s.Theme)
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	aspect := float64(sw) / float64(sh)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var bandErr error
	for y0 := 0; y0 < sh; y0 += r.bandHeight {
		y1 := min(y0+r.bandHeight, sh)
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: r.nextTaskID(),
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					errOnce.Do(func() { bandErr = err })
					return nil, err
				}
				renderBand(small, scene, base, s.Opacity, aspect, y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	if bandErr != nil {
		return nil, bandErr
	}

	if sw == width && sh == height {
		return small, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), xdraw.Src, nil)
	r.log.Debug("software frame rendered",
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("scaled_width", sw), zap.Int("scaled_height", sh))
	return out, nil
}

// renderBand fills rows [y0, y1) of img.
func renderBand(img *image.RGBA, scene gradient.Scene, base color.ShaderColor, opacity, aspect float64, y0, y1 int) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := y0; y < y1; y++ {
		v := (float64(y) + 0.5) / h
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			u := (float64(x) + 0.5) / w
			c := gradient.Composite(scene.Sample(u, v, aspect), base, opacity)
			r8, g8, b8 := c.Bytes()
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = r8, g8, b8, 0xff
		}
	}
}

func (r *renderer) nextTaskID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taskID++
	return r.taskID
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Stop()
}
