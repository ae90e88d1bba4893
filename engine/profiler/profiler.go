package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is the per-interval workload reported alongside frame timing.
type Stats struct {
	// Models is the number of animated models.
	Models int
	// Ticks is the cumulative number of animation ticks.
	Ticks uint64
	// Uploads is the cumulative number of vertex buffer uploads.
	Uploads uint64
}

// Profiler tracks frame rate, skinning workload and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	lastStats      Stats
}

// NewProfiler creates a new Profiler logging every interval.
// Non-positive intervals default to 1 second.
//
// Parameters:
//   - interval: time between log lines
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Tick should be called once per rendered frame.
// When the interval has elapsed it logs FPS, ticks and uploads per second, heap usage and allocation rate.
//
// Parameters:
//   - stats: the current cumulative workload counters
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats Stats) bool {
	return p.tickAt(time.Now(), stats, true)
}

func (p *Profiler) tickAt(now time.Time, stats Stats, emit bool) bool {
	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	secs := elapsed.Seconds()
	fps := float64(p.frameCount) / secs
	ticksPerSec := float64(stats.Ticks-p.lastStats.Ticks) / secs
	uploadsPerSec := float64(stats.Uploads-p.lastStats.Uploads) / secs

	if emit {
		runtime.ReadMemStats(&p.memStats)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs
		p.lastTotalAlloc = p.memStats.TotalAlloc

		log.Printf("[Profiler] FPS: %.2f | Models: %d | Ticks: %.1f/s | Uploads: %.1f/s | Heap: %.2f MB | Alloc Rate: %.2f MB/s",
			fps, stats.Models, ticksPerSec, uploadsPerSec, allocMB, allocRateMB)
	}

	p.frameCount = 0
	p.lastTime = now
	p.lastStats = stats
	return true
}
