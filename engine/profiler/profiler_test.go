package profiler

import (
	"testing"
	"time"
)

func TestTickLogsOncePerInterval(t *testing.T) {
	p := NewProfiler(time.Second)
	start := p.lastTime

	if p.tickAt(start.Add(500*time.Millisecond), Stats{Ticks: 10}, false) {
		t.Fatal("reported before the interval elapsed")
	}
	if !p.tickAt(start.Add(time.Second), Stats{Ticks: 60, Uploads: 30}, false) {
		t.Fatal("did not report after the interval elapsed")
	}
	if p.frameCount != 0 || p.lastStats.Ticks != 60 {
		t.Fatalf("counters not reset: frames=%d lastTicks=%d", p.frameCount, p.lastStats.Ticks)
	}
	if p.tickAt(start.Add(1500*time.Millisecond), Stats{Ticks: 90}, false) {
		t.Fatal("reported twice within one interval")
	}
}

func TestNewProfilerDefaultsInterval(t *testing.T) {
	if p := NewProfiler(0); p.updateInterval != time.Second {
		t.Fatalf("interval = %v, want 1s", p.updateInterval)
	}
}
