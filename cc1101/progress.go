package cc1101

import (
	"sync"
	"time"
)

// ProgressTracker tracks transfer progress and invokes progress callbacks.
type ProgressTracker struct {
	mu sync.Mutex

	filename    string
	transferred int64
	total       int64
	startTime   time.Time
	lastUpdate  time.Time
	lastCount   int64

	callback       func(string, int64, int64, float64)
	updateInterval time.Duration
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(callback func(string, int64, int64, float64), interval time.Duration) *ProgressTracker {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	return &ProgressTracker{
		callback:       callback,
		updateInterval: interval,
	}
}

// Start begins tracking a new transfer measured in fragments.
func (pt *ProgressTracker) Start(filename string, total int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.filename = filename
	pt.total = total
	pt.transferred = 0
	pt.startTime = time.Now()
	pt.lastUpdate = pt.startTime
	pt.lastCount = 0
}

// Update updates the progress and invokes the callback if enough time has passed.
func (pt *ProgressTracker) Update(transferred int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.transferred = transferred

	now := time.Now()
	if now.Sub(pt.lastUpdate) < pt.updateInterval {
		return
	}

	elapsed := now.Sub(pt.lastUpdate).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(transferred-pt.lastCount) / elapsed
	}

	if pt.callback != nil {
		pt.callback(pt.filename, transferred, pt.total, rate)
	}

	pt.lastUpdate = now
	pt.lastCount = transferred
}

// Complete marks the transfer as complete and returns the duration.
func (pt *ProgressTracker) Complete() time.Duration {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	duration := time.Since(pt.startTime)

	if pt.callback != nil {
		pt.callback(pt.filename, pt.transferred, pt.total, 0)
	}

	return duration
}
