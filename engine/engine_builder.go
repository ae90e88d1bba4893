package engine

import (
	"time"

	"github.com/Carmen-Shannon/c3-preview/engine/profiler"
	"github.com/Carmen-Shannon/c3-preview/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window whose events the loop polls. Without a window Run loops until Quit.
//
// Parameters:
//   - w: the window to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often the profiler logs.
//
// Parameters:
//   - interval: time between profiler log lines
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - hz: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(hz float64) EngineBuilderOption {
	return func(e *engine) {
		if hz <= 0 {
			hz = 60.0
		}
		e.tickRate = time.Duration(float64(time.Second) / hz)
	}
}

// WithMaxTicksPerFrame caps the catch-up ticks run in one loop iteration.
// Values < 1 are treated as 1.
//
// Parameters:
//   - n: maximum ticks per iteration (default 5)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxTicksPerFrame(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxTicksPerFrame = max(n, 1)
	}
}
