package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"dota-timeline/internal/ipc"
)

// MemoryLogger logs memory usage periodically
type MemoryLogger struct {
	output       *ipc.Output
	lastLog      time.Time
	interval     time.Duration
	lastTick     uint32
	tickInterval uint32
}

// NewMemoryLogger creates a new memory logger. A zero interval or tick
// interval disables that trigger.
func NewMemoryLogger(output *ipc.Output, interval time.Duration, tickInterval int) *MemoryLogger {
	return &MemoryLogger{
		output:       output,
		interval:     interval,
		lastLog:      time.Now(),
		tickInterval: uint32(max(tickInterval, 0)),
	}
}

// LogIfNeeded logs memory stats if interval has passed or tick interval reached
func (ml *MemoryLogger) LogIfNeeded(tick uint32) {
	now := time.Now()
	shouldLog := false

	// Log every interval
	if ml.interval > 0 && now.Sub(ml.lastLog) >= ml.interval {
		shouldLog = true
		ml.lastLog = now
	}

	// Also log every N ticks
	if ml.tickInterval > 0 && tick > ml.lastTick && tick-ml.lastTick >= ml.tickInterval {
		shouldLog = true
		ml.lastTick = tick
	}

	if !shouldLog {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ml.output.Log(ipc.LevelDebug, fmt.Sprintf("Memory: HeapAlloc=%s, HeapInuse=%s, HeapSys=%s, NumGC=%d, Tick=%d",
		humanize.IBytes(m.HeapAlloc), humanize.IBytes(m.HeapInuse), humanize.IBytes(m.HeapSys), m.NumGC, tick))
}
