package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/farxc/despesas-dw/internal/logger"
)

type ProfilerStats struct {
	PeakGoroutines int
	PeakMemoryMB   uint64
}

// MemoryMonitor samples heap and goroutine counts while a run is loading
// whole months into memory.
type MemoryMonitor struct {
	mu    sync.Mutex
	stats ProfilerStats
	stop  chan struct{}
}

func NewMonitor() *MemoryMonitor {
	return &MemoryMonitor{stop: make(chan struct{})}
}

func (m *MemoryMonitor) Start(interval time.Duration, appLogger *logger.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sample(appLogger)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *MemoryMonitor) sample(appLogger *logger.Logger) {
	const component = "Monitor"

	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)
	goroutines := runtime.NumGoroutine()
	memoryMB := mStats.Alloc / 1024 / 1024

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.PeakGoroutines = max(m.stats.PeakGoroutines, goroutines)
	m.stats.PeakMemoryMB = max(m.stats.PeakMemoryMB, memoryMB)

	appLogger.Debug(component, "goroutines=%d memoryMB=%d peakGoroutines=%d peakMemoryMB=%d", goroutines, memoryMB, m.stats.PeakGoroutines, m.stats.PeakMemoryMB)
}

// Stop ends sampling and returns the peaks observed.
func (m *MemoryMonitor) Stop() ProfilerStats {
	close(m.stop)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
