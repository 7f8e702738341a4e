package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/backdrop/engine/renderer"
	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"go.uber.org/zap"
)

// DefaultRetryDelay is the pause before a transiently failed bootstrap is retried.
const DefaultRetryDelay = 250 * time.Millisecond

// Session is one bootstrapped device with the renderer built on it. A session is owned by the
// Manager; callers use it only while the manager reports it.
type Session struct {
	// ID identifies the bootstrap attempt that produced the session.
	ID uint64

	Adapter  gpu.Adapter
	Device   gpu.Device
	Renderer renderer.Renderer
}

// release frees the session. A lost device is not destroyed explicitly; its resources go with it.
func (s *Session) release(destroyDevice bool) {
	if s.Renderer != nil {
		s.Renderer.Release()
	}
	if destroyDevice && s.Device != nil {
		s.Device.Release()
	}
	if s.Adapter != nil {
		s.Adapter.Release()
	}
}

// attempt is one in-flight bootstrap.
type attempt struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (a *attempt) finish() {
	a.once.Do(func() {
		a.cancel()
		close(a.done)
	})
}

// manager is the implementation of the Manager interface.
type manager struct {
	provider        gpu.Provider
	log             *zap.Logger
	execute         func(func()) bool
	surfaceSize     func() (int, int)
	rendererOptions []renderer.RendererBuilderOption
	retryDelay      time.Duration

	onReady             func(*Session)
	onUnsupportedChange func(bool)
	onDiagnostic        func(string)
	onStateChange       func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// leases is held shared while a caller renders with the session and exclusively while a
	// published session is released. It is never acquired with mu held.
	leases sync.RWMutex

	mu       sync.Mutex
	state    State
	session  *Session
	attempt  *attempt
	nextID   uint64
	attempts int
	retry    *time.Timer
	err      error
	pending  []func()
}

// Manager owns the adapter, device and renderer of the GPU path. It moves through an explicit state
// machine: at most one bootstrap attempt is in flight, a device loss starts a fresh attempt, fatal
// failures end in StateUnsupported, and Dispose cancels and awaits any in-flight work.
type Manager interface {
	// Ensure starts a bootstrap unless one is in flight or the state is Ready or terminal. Concurrent
	// callers share the same attempt.
	//
	// Returns:
	//   - <-chan struct{}: closed when the current attempt completes, or already closed
	Ensure() <-chan struct{}

	// Wait drives bootstrap until the manager is Ready, Unsupported or Disposed, retrying transient
	// failures.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: nil when Ready, the fatal bootstrap error when Unsupported, ErrDisposed, or ctx.Err()
	Wait(ctx context.Context) error

	// State returns the current state.
	//
	// Returns:
	//   - State: the state
	State() State

	// Session returns the ready session.
	//
	// Returns:
	//   - *Session: the session
	//   - bool: false unless the state is Ready
	Session() (*Session, bool)

	// Acquire leases the ready session. A published session is not released until every lease on it
	// has ended, so the lease must end before the holder calls HandleLost or Dispose.
	//
	// Returns:
	//   - *Session: the session
	//   - func(): ends the lease
	//   - bool: false unless the state is Ready
	Acquire() (*Session, func(), bool)

	// HandleLost reacts to the loss of the device created by attempt id. Losses reported for any other
	// attempt are ignored.
	//
	// Parameters:
	//   - id: the attempt id of the lost session
	//   - reason: the loss reason, forwarded to diagnostics
	HandleLost(id uint64, reason string)

	// Attempts returns how many bootstrap attempts were started.
	//
	// Returns:
	//   - int: the attempt count
	Attempts() int

	// Err returns the error of the last failed bootstrap, or nil.
	//
	// Returns:
	//   - error: the error
	Err() error

	// Dispose cancels any in-flight attempt, waits for it to finish and releases the session. It is
	// idempotent.
	Dispose()
}

var _ Manager = &manager{}

// NewManager creates a Manager in StateUninitialized. No GPU work starts until Ensure is called.
//
// Parameters:
//   - provider: the GPU entry point
//   - options: functional options
//
// Returns:
//   - Manager: the manager
func NewManager(provider gpu.Provider, options ...ManagerBuilderOption) Manager {
	m := &manager{
		provider:    provider,
		log:         zap.NewNop(),
		surfaceSize: func() (int, int) { return 1, 1 },
		retryDelay:  DefaultRetryDelay,
	}
	for _, opt := range options {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

var closed = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func (m *manager) Ensure() <-chan struct{} {
	m.mu.Lock()
	var ch <-chan struct{}
	switch m.state {
	case StateInitializing:
		ch = m.attempt.done
	case StateUninitialized, StateLost:
		ch = m.startLocked().done
	default:
		ch = closed
	}
	m.mu.Unlock()
	m.flush()
	return ch
}

func (m *manager) Wait(ctx context.Context) error {
	for {
		select {
		case <-m.Ensure():
		case <-ctx.Done():
			return ctx.Err()
		}

		switch m.State() {
		case StateReady:
			return nil
		case StateUnsupported:
			return m.Err()
		case StateDisposed:
			return ErrDisposed
		case StateLost:
			select {
			case <-time.After(m.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (m *manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *manager) Session() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady {
		return nil, false
	}
	return m.session, true
}

func (m *manager) Acquire() (*Session, func(), bool) {
	m.leases.RLock()
	sess, ok := m.Session()
	if !ok {
		m.leases.RUnlock()
		return nil, nil, false
	}
	return sess, m.leases.RUnlock, true
}

// releaseLeased releases a session that was published to callers once their leases ended.
func (m *manager) releaseLeased(sess *Session, destroyDevice bool) {
	m.leases.Lock()
	defer m.leases.Unlock()
	sess.release(destroyDevice)
}

func (m *manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *manager) HandleLost(id uint64, reason string) {
	m.mu.Lock()
	if m.state != StateReady || m.session == nil || m.session.ID != id {
		m.mu.Unlock()
		m.log.Debug("stale device loss ignored", zap.Uint64("attempt", id), zap.String("reason", reason))
		return
	}
	lost := m.session
	m.session = nil
	m.setStateLocked(StateLost)
	m.diagnoseLocked(fmt.Sprintf("gpu device lost: %s", reason))
	m.startLocked()
	m.mu.Unlock()

	m.releaseLeased(lost, false)
	m.flush()
}

func (m *manager) Dispose() {
	m.mu.Lock()
	if m.state == StateDisposed {
		m.mu.Unlock()
		return
	}
	m.setStateLocked(StateDisposed)
	m.cancel()
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	a := m.attempt
	m.attempt = nil
	sess := m.session
	m.session = nil
	m.mu.Unlock()

	m.wg.Wait()
	if a != nil {
		a.finish()
	}
	if sess != nil {
		m.releaseLeased(sess, true)
	}
	m.flush()
}

// startLocked begins a new bootstrap attempt. The caller holds m.mu.
func (m *manager) startLocked() *attempt {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.nextID++
	ctx, cancel := context.WithCancel(m.ctx)
	a := &attempt{id: m.nextID, cancel: cancel, done: make(chan struct{})}
	m.attempt = a
	m.attempts++
	m.setStateLocked(StateInitializing)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		sess, err := m.bootstrap(ctx, a.id)
		if ctx.Err() != nil {
			if sess != nil {
				sess.release(true)
			}
			a.finish()
			return
		}
		m.deliver(func() { m.complete(a, sess, err) })
	}()
	return a
}

func (m *manager) bootstrap(ctx context.Context, id uint64) (*Session, error) {
	adapter, err := m.provider.RequestAdapter(ctx)
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	sess := &Session{ID: id, Adapter: adapter}

	device, err := adapter.RequestDevice(ctx, gpu.DeviceCallbacks{
		OnLost: func(reason string) {
			m.deliver(func() { m.HandleLost(id, reason) })
		},
		OnError: func(message string) {
			m.deliver(func() { m.diagnose("gpu error: " + message) })
		},
	})
	if err != nil {
		sess.release(false)
		return nil, fmt.Errorf("request device: %w", err)
	}
	sess.Device = device

	w, h := m.surfaceSize()
	w, h = max(w, 1), max(h, 1)
	if err := device.ConfigureSurface(w, h); err != nil {
		sess.release(true)
		return nil, fmt.Errorf("configure surface: %w", err)
	}

	options := append(slices.Clone(m.rendererOptions), renderer.WithLogger(m.log), renderer.WithSurfaceSize(w, h))
	r, err := renderer.NewRenderer(device, options...)
	if err != nil {
		sess.release(true)
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	sess.Renderer = r
	return sess, nil
}

// complete installs the result of attempt a unless it was superseded or the manager was disposed.
func (m *manager) complete(a *attempt, sess *Session, err error) {
	m.mu.Lock()
	if m.attempt != a || m.state == StateDisposed {
		m.mu.Unlock()
		if sess != nil {
			sess.release(true)
		}
		a.finish()
		return
	}
	m.attempt = nil

	switch {
	case err == nil:
		m.session = sess
		m.err = nil
		m.setStateLocked(StateReady)
		if m.onReady != nil {
			m.pending = append(m.pending, func() { m.onReady(sess) })
		}
	case IsFatal(err):
		m.err = err
		m.setStateLocked(StateUnsupported)
		m.diagnoseLocked(fmt.Sprintf("gpu unsupported: %v", err))
		if m.onUnsupportedChange != nil {
			m.pending = append(m.pending, func() { m.onUnsupportedChange(true) })
		}
	default:
		m.err = err
		m.setStateLocked(StateLost)
		m.diagnoseLocked(fmt.Sprintf("gpu bootstrap failed, retrying: %v", err))
		m.retry = time.AfterFunc(m.retryDelay, func() {
			m.deliver(func() { m.Ensure() })
		})
	}
	m.mu.Unlock()

	a.finish()
	m.flush()
}

// deliver runs fn on the executor, or inline when there is none or it refuses the function.
func (m *manager) deliver(fn func()) {
	if m.execute != nil && m.execute(fn) {
		return
	}
	fn()
}

func (m *manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	from := m.state
	m.state = s
	m.log.Debug("gpu lifecycle transition", zap.Stringer("from", from), zap.Stringer("to", s), zap.Uint64("attempt", m.nextID))
	if m.onStateChange != nil {
		m.pending = append(m.pending, func() { m.onStateChange(s) })
	}
}

func (m *manager) diagnose(message string) {
	m.log.Warn(message)
	if m.onDiagnostic != nil {
		m.onDiagnostic(message)
	}
}

func (m *manager) diagnoseLocked(message string) {
	m.pending = append(m.pending, func() { m.diagnose(message) })
}

// flush runs the callbacks queued under the lock.
func (m *manager) flush() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
