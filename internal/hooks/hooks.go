// Package hooks provides logging and metrics adapters for the conversion
// executor's per-hop instrumentation points.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nervalabs/routecore/internal/graph"
)

// Logger is the minimal structured-logging contract the executor and graph
// depend on, satisfied by SlogLogger or any test double.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// SlogLogger wraps the standard library slog.Logger to satisfy Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) { s.log.Debug(msg, toAttrs(fields)...) }
func (s *SlogLogger) Info(msg string, fields ...interface{})  { s.log.Info(msg, toAttrs(fields)...) }
func (s *SlogLogger) Warn(msg string, fields ...interface{})  { s.log.Warn(msg, toAttrs(fields)...) }
func (s *SlogLogger) Error(msg string, fields ...interface{}) { s.log.Error(msg, toAttrs(fields)...) }

func toAttrs(fields []interface{}) []any { return fields }

// StepHook is the executor's per-hop instrumentation callback, invoked
// immediately before and after each attemptPath conversion step.
type StepHook interface {
	BeforeStep(ctx context.Context, handlerName string, node graph.PathNode)
	AfterStep(ctx context.Context, handlerName string, node graph.PathNode, d time.Duration, err error)
}

// LoggingHook logs before/after each conversion hop.
type LoggingHook struct {
	logger Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, handlerName string, node graph.PathNode) {
	h.logger.Debug("executor.step.start",
		"handler", handlerName,
		"format", node.Format.Format,
		"mime", node.Format.MIME,
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, handlerName string, node graph.PathNode, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("executor.step.error",
			"handler", handlerName,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	h.logger.Debug("executor.step.done",
		"handler", handlerName,
		"duration_ms", d.Milliseconds(),
		"format", fmt.Sprintf("%s (%s)", node.Format.Format, node.Format.MIME),
	)
}

// ── In-memory metrics collector ─────────────────────────────────────────────

// MetricsCollector is the minimal metrics sink the executor depends on.
type MetricsCollector interface {
	RecordProcessingTime(handlerName string, d time.Duration)
	RecordThroughput(bytes int64)
	RecordError(handlerName string, reason string)
}

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	handlerDurationsMs map[string]int64
	handlerCalls       map[string]int64
	handlerErrors      map[string]int64

	totalThroughputB int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		handlerDurationsMs: make(map[string]int64),
		handlerCalls:       make(map[string]int64),
		handlerErrors:      make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(handlerName string, d time.Duration) {
	ms := d.Milliseconds()
	m.mu.Lock()
	m.handlerDurationsMs[handlerName] += ms
	m.handlerCalls[handlerName]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	atomic.AddInt64(&m.totalThroughputB, bytes)
}

func (m *InMemoryMetrics) RecordError(handlerName string, _ string) {
	m.mu.Lock()
	m.handlerErrors[handlerName]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		HandlerDurationsMs: make(map[string]int64, len(m.handlerDurationsMs)),
		HandlerCalls:       make(map[string]int64, len(m.handlerCalls)),
		HandlerErrors:      make(map[string]int64, len(m.handlerErrors)),
		TotalThroughputB:   atomic.LoadInt64(&m.totalThroughputB),
	}
	for k, v := range m.handlerDurationsMs {
		snap.HandlerDurationsMs[k] = v
	}
	for k, v := range m.handlerCalls {
		snap.HandlerCalls[k] = v
	}
	for k, v := range m.handlerErrors {
		snap.HandlerErrors[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	HandlerDurationsMs map[string]int64
	HandlerCalls       map[string]int64
	HandlerErrors      map[string]int64
	TotalThroughputB   int64
}

// ── Metrics hook ─────────────────────────────────────────────────────────────

// MetricsHook feeds executor events into a MetricsCollector. BeforeStep has
// nothing to record; AfterStep's duration comes from the executor, which
// already times the call around the handler's own mutex.
type MetricsHook struct {
	collector MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c MetricsCollector) *MetricsHook {
	return &MetricsHook{collector: c}
}

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ graph.PathNode) {}

func (h *MetricsHook) AfterStep(_ context.Context, handlerName string, _ graph.PathNode, d time.Duration, err error) {
	h.collector.RecordProcessingTime(handlerName, d)
	if err != nil {
		h.collector.RecordError(handlerName, "convert")
	}
}
