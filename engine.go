package authgate

import (
	"log"
	"time"
)

// Engine is the session validator. It orchestrates the session source,
// profile source, and credential verifier into a single [ValidationResult]
// per call, and owns the [RefreshCoordinator].
//
// Engine instances are configured through [Builder] and treated as immutable
// afterwards; all methods are safe for concurrent use.
type Engine struct {
	config      Config
	sessions    SessionSource
	profiles    ProfileSource
	recorder    ProfileRecorder
	verifier    CredentialVerifier
	coordinator *RefreshCoordinator
	critical    map[string]bool
	audit       *auditDispatcher
	metrics     *Metrics
	logger      *log.Logger
	now         func() time.Time
}

// Coordinator returns the engine's refresh coordinator, shared by the
// transport wrapper and the background safety net.
func (e *Engine) Coordinator() *RefreshCoordinator {
	return e.coordinator
}

// Close stops the background refresh check (if scheduled) and drains the
// audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.coordinator != nil {
		e.coordinator.stopBackground()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped due to dispatcher
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time deep copy of all metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}
