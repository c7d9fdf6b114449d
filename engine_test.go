package authgate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripora/authgate/claims"
	"github.com/tripora/authgate/permission"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type scriptedSessions struct {
	mu      sync.Mutex
	session *Session
	err     error

	total  atomic.Int64
	forced atomic.Int64

	// Optional synchronization hooks for forced fetches: fetchStarted is
	// signalled on entry, fetchGate blocks the fetch until closed.
	fetchStarted chan struct{}
	fetchGate    chan struct{}
}

func (s *scriptedSessions) FetchSession(_ context.Context, forceRenew bool) (*Session, error) {
	s.total.Add(1)
	if forceRenew {
		s.forced.Add(1)
		if s.fetchStarted != nil {
			select {
			case s.fetchStarted <- struct{}{}:
			default:
			}
		}
		if s.fetchGate != nil {
			<-s.fetchGate
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.session == nil {
		return nil, nil
	}
	cp := *s.session
	return &cp, nil
}

func (s *scriptedSessions) set(sess *Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

type scriptedProfiles struct {
	mu        sync.Mutex
	attrs     map[string]string
	attrErr   error
	marker    time.Time
	markerErr error
	recorded  []time.Time
}

func (p *scriptedProfiles) FetchAttributes(context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attrErr != nil {
		return nil, p.attrErr
	}
	out := make(map[string]string, len(p.attrs))
	for k, v := range p.attrs {
		out[k] = v
	}
	return out, nil
}

func (p *scriptedProfiles) LastProfileUpdate(context.Context) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.marker, p.markerErr
}

func (p *scriptedProfiles) RecordProfileUpdate(_ context.Context, at time.Time) error {
	p.mu.Lock()
	p.recorded = append(p.recorded, at)
	p.marker = at
	p.mu.Unlock()
	return nil
}

type verifierFunc func(string) claims.Report

func (f verifierFunc) Verify(credential string) claims.Report {
	return f(credential)
}

func reportFor(userID string, role permission.Role, iat, exp time.Time) claims.Report {
	c := &claims.Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return claims.Report{
		Valid:  true,
		UserID: userID,
		Role:   role,
		Claims: c,
	}
}

func buildTestEngine(t *testing.T, clock *testClock, sessions SessionSource, profiles ProfileSource, verifier CredentialVerifier) *Engine {
	t.Helper()

	engine, err := New().
		WithSessionSource(sessions).
		WithProfileSource(profiles).
		WithVerifier(verifier).
		WithMetricsEnabled(true).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
