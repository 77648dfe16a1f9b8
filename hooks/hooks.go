// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rasterlab/filterkit/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, fields...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, fields...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, fields...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, fields...)
}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each transform.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeTransform(_ context.Context, name string, buf *core.PixelBuffer) {
	h.logger.Debug("editor.transform.start",
		"transform", name,
		"width", buf.Width,
		"height", buf.Height,
	)
}

func (h *LoggingHook) AfterTransform(_ context.Context, name string, buf *core.PixelBuffer, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("editor.transform.error",
			"transform", name,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	w, ht := 0, 0
	if buf != nil {
		w, ht = buf.Width, buf.Height
	}
	h.logger.Debug("editor.transform.done",
		"transform", name,
		"duration_ms", d.Milliseconds(),
		"width", w,
		"height", ht,
	)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	transformDurationsMs map[string]int64 // cumulative ms per transform
	transformCalls       map[string]int64 // call count per transform
	transformErrors      map[string]int64

	totalThroughputB int64
	totalMemoryB     int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		transformDurationsMs: make(map[string]int64),
		transformCalls:       make(map[string]int64),
		transformErrors:      make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(name string, d interface{ Seconds() float64 }) {
	ms := int64(d.Seconds() * 1000)
	m.mu.Lock()
	m.transformDurationsMs[name] += ms
	m.transformCalls[name]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	atomic.AddInt64(&m.totalThroughputB, bytes)
}

func (m *InMemoryMetrics) RecordMemory(bytes int64) {
	atomic.AddInt64(&m.totalMemoryB, bytes)
}

func (m *InMemoryMetrics) RecordError(name string, _ string) {
	m.mu.Lock()
	m.transformErrors[name]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		TransformDurationsMs: make(map[string]int64, len(m.transformDurationsMs)),
		TransformCalls:       make(map[string]int64, len(m.transformCalls)),
		TransformErrors:      make(map[string]int64, len(m.transformErrors)),
		TotalThroughputB:     atomic.LoadInt64(&m.totalThroughputB),
		TotalMemoryB:         atomic.LoadInt64(&m.totalMemoryB),
	}
	for k, v := range m.transformDurationsMs {
		snap.TransformDurationsMs[k] = v
	}
	for k, v := range m.transformCalls {
		snap.TransformCalls[k] = v
	}
	for k, v := range m.transformErrors {
		snap.TransformErrors[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	TransformDurationsMs map[string]int64
	TransformCalls       map[string]int64
	TransformErrors      map[string]int64
	TotalThroughputB     int64
	TotalMemoryB         int64
}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds editor events into a MetricsCollector.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeTransform(_ context.Context, _ string, _ *core.PixelBuffer) {}

func (h *MetricsHook) AfterTransform(_ context.Context, name string, buf *core.PixelBuffer, d time.Duration, err error) {
	h.collector.RecordProcessingTime(name, d)
	if err != nil {
		h.collector.RecordError(name, "transform")
	}
	if buf != nil {
		h.collector.RecordMemory(int64(len(buf.Pix)))
	}
}

var (
	_ core.Hook             = (*LoggingHook)(nil)
	_ core.Hook             = (*MetricsHook)(nil)
	_ core.MetricsCollector = (*InMemoryMetrics)(nil)
	_ core.Logger           = (*SlogLogger)(nil)
)
