package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/c3-preview/engine/profiler"
	"github.com/Carmen-Shannon/c3-preview/engine/window"
)

// engine implements the Engine interface.
type engine struct {
	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool
	statsSource      func() profiler.Stats

	tickRate         time.Duration
	maxTicksPerFrame int
	paused           bool

	// accumulated is wall time not yet consumed by ticks.
	accumulated time.Duration

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	quit bool
	now  func() time.Time
}

// Engine runs the preview frame loop on the calling goroutine.
//
// Each iteration polls window events, runs zero or more fixed-rate ticks to catch up with wall time,
// then renders once. Ticks and renders never overlap.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil for a headless engine
	Window() window.Window

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - hz: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(hz float64)

	// TickRate returns the current tick interval.
	//
	// Returns:
	//   - time.Duration: time between ticks
	TickRate() time.Duration

	// SetPaused stops or resumes tick callbacks. Rendering continues while paused.
	//
	// Parameters:
	//   - paused: true to stop ticking
	SetPaused(paused bool)

	// Paused reports whether ticking is paused.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function receiving the fixed tick interval in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per loop iteration after ticking.
	//
	// Parameters:
	//   - callback: function receiving the wall time since the previous render in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetStatsSource registers the function the profiler polls for workload counters.
	//
	// Parameters:
	//   - source: function returning the current counters
	SetStatsSource(source func() profiler.Stats)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run runs the loop until the window closes or Quit is called.
	Run()

	// Step runs one loop iteration with an explicit elapsed wall time, without polling the window.
	//
	// Parameters:
	//   - elapsed: wall time since the previous iteration
	Step(elapsed time.Duration)

	// Quit makes Run return after the current iteration.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
// Defaults: 60 ticks per second, at most 5 catch-up ticks per frame, profiling off.
//
// Parameters:
//   - options: functional options for engine configuration (window, tick rate, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:         profiler.NewProfiler(time.Second),
		tickRate:         time.Second / 60,
		maxTicksPerFrame: 5,
		now:              time.Now,
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) SetTickRate(hz float64) {
	if hz <= 0 {
		hz = 60
	}
	e.tickRate = time.Duration(float64(time.Second) / hz)
}

func (e *engine) TickRate() time.Duration {
	return e.tickRate
}

func (e *engine) SetPaused(paused bool) {
	e.paused = paused
}

func (e *engine) Paused() bool {
	return e.paused
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetStatsSource(source func() profiler.Stats) {
	e.statsSource = source
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Quit() {
	e.quit = true
}

func (e *engine) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("frame loop recovered from panic: %v", r)
		}
	}()

	last := e.now()
	for !e.quit {
		if e.window != nil && !e.window.PollEvents() {
			return
		}
		now := e.now()
		e.Step(now.Sub(last))
		last = now
	}
}

func (e *engine) Step(elapsed time.Duration) {
	e.runTicks(elapsed)

	if e.renderCallback != nil {
		e.renderCallback(float32(elapsed.Seconds()))
	}

	if e.profilingEnabled && e.profiler != nil {
		var stats profiler.Stats
		if e.statsSource != nil {
			stats = e.statsSource()
		}
		e.profiler.Tick(stats)
	}
}

// runTicks consumes elapsed wall time in fixed tick intervals.
// Backlog beyond maxTicksPerFrame is dropped so a stall does not trigger a burst of catch-up ticks.
func (e *engine) runTicks(elapsed time.Duration) {
	if e.paused || elapsed < 0 {
		e.accumulated = 0
		return
	}
	e.accumulated += elapsed

	ticks := 0
	for e.accumulated >= e.tickRate {
		if ticks == e.maxTicksPerFrame {
			e.accumulated = 0
			break
		}
		if e.tickCallback != nil {
			e.tickCallback(float32(e.tickRate.Seconds()))
		}
		e.accumulated -= e.tickRate
		ticks++
	}
}
