package main

import (
	"io"
	"testing"
	"time"

	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestMemoryMonitorRecordsPeaks(t *testing.T) {
	m := NewMonitor()
	m.sample(logger.New(io.Discard, logger.LevelError))
	m.Start(time.Millisecond, logger.New(io.Discard, logger.LevelError))

	stats := m.Stop()

	assert.GreaterOrEqual(t, stats.PeakGoroutines, 1)
}
