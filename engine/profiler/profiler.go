package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// FrameSample is what one rendered frame reports to the profiler.
type FrameSample struct {
	Passes       int
	Reallocated  bool
	HistoryReset bool
}

// Stats summarizes one profiling interval.
type Stats struct {
	FPS           float64
	Frames        int
	Passes        int
	Reallocations int
	HistoryResets int
	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	MaxPauseUs    uint64
	SysMB         float64
}

// ProfilerBuilderOption is a functional option applied to a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger statistics are written to.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if log != nil {
			p.log = log
		}
	}
}

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - interval: the update interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// Profiler tracks frame rate, render target churn and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	log            *zap.Logger
	now            func() time.Time
	updateInterval time.Duration

	frameCount     int
	passes         int
	reallocations  int
	historyResets  int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	last Stats
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		log:            zap.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, passes per frame, target reallocations, history resets, heap usage,
// allocation rate, GC count/pause times and total memory.
//
// Parameters:
//   - f: the frame's sample
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(f FrameSample) bool {
	p.frameCount++
	p.passes += f.Passes
	if f.Reallocated {
		p.reallocations++
	}
	if f.HistoryReset {
		p.historyResets++
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	gcCount := p.memStats.NumGC

	// PauseNs is a circular buffer of the last 256 GC pauses
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.last = Stats{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		Frames:        p.frameCount,
		Passes:        p.passes / p.frameCount,
		Reallocations: p.reallocations,
		HistoryResets: p.historyResets,
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       gcCount,
		MaxPauseUs:    maxPauseUs,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
	}
	p.log.Info("frame stats",
		zap.Float64("fps", p.last.FPS),
		zap.Int("passes", p.last.Passes),
		zap.Int("reallocations", p.last.Reallocations),
		zap.Int("history_resets", p.last.HistoryResets),
		zap.Float64("heap_mb", p.last.HeapMB),
		zap.Float64("alloc_rate_mb", p.last.AllocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
		zap.Float64("sys_mb", p.last.SysMB),
	)

	p.frameCount = 0
	p.passes = 0
	p.reallocations = 0
	p.historyResets = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent completed interval.
func (p *Profiler) Last() Stats {
	return p.last
}
