package window

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/scheduler"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a desktop window the background is rendered into.
// It implements scheduler.Canvas and provides the WebGPU surface descriptor.
type Window interface {
	scheduler.Canvas

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// FramebufferSize returns the drawable size in physical pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	FramebufferSize() (int, int)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling (main) goroutine.
	// Blocks until the window is closed or ctx is done. Calls the update callback each iteration.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	ProcessMessages(ctx context.Context)
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the cached sizes read off the main thread.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight bound the window size during resize.
	minWidth  int
	minHeight int

	// pollInterval is the longest the message loop waits for events before running the update callback.
	pollInterval time.Duration

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	mu         sync.Mutex
	width      int
	height     int
	fbWidth    int
	fbHeight   int
	observers  map[int]func()
	observerID int
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order.
// Must be called from the main goroutine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:        "backdrop",
		minWidth:     200,
		minHeight:    120,
		width:        1280,
		height:       720,
		pollInterval: time.Second / 240,
		observers:    make(map[int]func()),
	}
	for _, opt := range options {
		opt(w)
	}
	w.fbWidth, w.fbHeight = w.width, w.height
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) ClientSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *engineWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fbWidth, w.fbHeight
}

// DevicePixelRatio is derived from the framebuffer and window sizes, which is correct both where
// window coordinates are logical (macOS) and where they are already pixels.
func (w *engineWindow) DevicePixelRatio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.width <= 0 || w.fbWidth <= 0 {
		return 1
	}
	return float64(w.fbWidth) / float64(w.width)
}

func (w *engineWindow) ObserveResize(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observerID++
	id := w.observerID
	w.observers[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.observers, id)
	}
}

// setSizes stores new window and framebuffer sizes and notifies observers when anything changed.
func (w *engineWindow) setSizes(width, height, fbWidth, fbHeight int) {
	w.mu.Lock()
	if w.width == width && w.height == height && w.fbWidth == fbWidth && w.fbHeight == fbHeight {
		w.mu.Unlock()
		return
	}
	w.width, w.height = width, height
	w.fbWidth, w.fbHeight = fbWidth, fbHeight
	observers := make([]func(), 0, len(w.observers))
	for _, fn := range w.observers {
		observers = append(observers, fn)
	}
	w.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages(ctx context.Context) {
	for w.IsRunning() && ctx.Err() == nil {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}
