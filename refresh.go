package authgate

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tripora/authgate/internal/flows"
)

// RefreshCoordinator deduplicates and rate-limits credential renewals. It
// owns the only long-lived mutable state in the subsystem: the timestamp of
// the last refresh attempt and the needs-renewal flag set by the most recent
// validation.
//
// Concurrent callers share a single in-flight renewal: the timestamp is
// atomic and the provider round trip runs under a singleflight group, so the
// read-compare-write race of a bare timestamp heuristic cannot trigger
// duplicate renewals. The externally observable timing is unchanged: a
// refresh within MinInterval of the previous one is answered from the dedup
// window without a provider round trip.
type RefreshCoordinator struct {
	engine      *Engine
	minInterval time.Duration
	interval    time.Duration
	now         func() time.Time

	lastRefresh   atomic.Int64 // unix nanos, 0 = never
	renewalNeeded atomic.Bool
	group         singleflight.Group

	bgStarted atomic.Bool
	bgDone    chan struct{}
	bgWg      sync.WaitGroup
}

func newRefreshCoordinator(engine *Engine, cfg RefreshConfig) *RefreshCoordinator {
	return &RefreshCoordinator{
		engine:      engine,
		minInterval: cfg.MinInterval,
		interval:    cfg.BackgroundInterval,
		now:         engine.now,
	}
}

// ShouldRefresh reports whether a renewal attempt is warranted: the last
// validation flagged the credential, or more than MinInterval has passed
// since the last refresh attempt.
func (c *RefreshCoordinator) ShouldRefresh() bool {
	return flows.ShouldRefresh(c.renewalNeeded.Load(), c.lastRefreshTime(), c.now(), c.minInterval)
}

// PerformSilentRefresh renews the credential through the identity provider
// and reports whether the renewed session validated. A refresh that
// completed within MinInterval is treated as sufficient and answered true
// without a provider round trip.
//
// A false return means "proceed with the existing credential and expect a
// possible authorization failure downstream", never a fatal condition.
func (c *RefreshCoordinator) PerformSilentRefresh(ctx context.Context) bool {
	if flows.WithinDedupWindow(c.lastRefreshTime(), c.now(), c.minInterval) {
		c.engine.metrics.Inc(MetricRefreshDeduped)
		return true
	}
	return c.refresh(ctx)
}

// ForceRefresh renews immediately, bypassing the dedup window. Used by the
// critical-attribute handler, where a stale credential must not survive the
// mutation that invalidated it.
func (c *RefreshCoordinator) ForceRefresh(ctx context.Context) bool {
	return c.refresh(ctx)
}

func (c *RefreshCoordinator) refresh(ctx context.Context) bool {
	v, _, shared := c.group.Do("silent-refresh", func() (any, error) {
		// Timestamp first: a concurrent caller arriving while the round
		// trip is in flight lands in the dedup window or shares this call.
		c.lastRefresh.Store(c.now().UnixNano())

		// Renewal runs to completion even if the originating request has
		// since been cancelled.
		res := c.engine.Validate(context.WithoutCancel(ctx), true)
		if res.Valid {
			c.renewalNeeded.Store(false)
		}
		c.noteRefresh(ctx, res)
		return res.Valid, nil
	})
	if shared {
		c.engine.metrics.Inc(MetricRefreshShared)
	}
	ok, _ := v.(bool)
	return ok
}

// ScheduleBackgroundChecks starts the recurring safety-net check for idle
// sessions that issue no requests. It returns a stop function; calling
// ScheduleBackgroundChecks more than once is a no-op. Engine.Close also
// stops the check.
func (c *RefreshCoordinator) ScheduleBackgroundChecks() (stop func()) {
	if !c.bgStarted.CompareAndSwap(false, true) {
		return func() {}
	}

	c.bgDone = make(chan struct{})
	c.bgWg.Add(1)
	go func() {
		defer c.bgWg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.engine.metrics.Inc(MetricBackgroundCheck)
				if c.ShouldRefresh() {
					c.PerformSilentRefresh(context.Background())
				}
			case <-c.bgDone:
				return
			}
		}
	}()

	return sync.OnceFunc(c.stopBackground)
}

func (c *RefreshCoordinator) stopBackground() {
	if c == nil || !c.bgStarted.Load() || c.bgDone == nil {
		return
	}
	select {
	case <-c.bgDone:
	default:
		close(c.bgDone)
	}
	c.bgWg.Wait()
}

// LastRefreshAt returns when the last refresh attempt started; zero when no
// refresh has run yet.
func (c *RefreshCoordinator) LastRefreshAt() time.Time {
	return c.lastRefreshTime()
}

func (c *RefreshCoordinator) lastRefreshTime() time.Time {
	nanos := c.lastRefresh.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

func (c *RefreshCoordinator) noteValidation(needsRenewal bool) {
	c.renewalNeeded.Store(needsRenewal)
}

func (c *RefreshCoordinator) noteRefresh(ctx context.Context, res *ValidationResult) {
	e := c.engine
	if res.Valid {
		e.metrics.Inc(MetricRefreshSuccess)
	} else {
		e.metrics.Inc(MetricRefreshFailure)
		if e.logger != nil {
			e.logger.Printf("authgate: %v: %s", ErrRenewalFailed, strings.Join(res.Errors, "; "))
		}
	}

	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: e.now(),
		EventType: EventSilentRefresh,
		IP:        clientIPFromContext(ctx),
		Success:   res.Valid,
	}
	if res.Identity != nil {
		event.UserID = res.Identity.ID
		event.Role = res.Identity.Role.String()
	}
	if len(res.Errors) > 0 {
		event.Error = strings.Join(res.Errors, "; ")
	}
	e.audit.Emit(ctx, event)
}
