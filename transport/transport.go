package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// Headers stamped on intercepted requests.
const (
	// RetryHeader marks a request as the single post-refresh retry. Its
	// presence suppresses any further retry.
	RetryHeader = "X-Authgate-Retry"
	// RequestIDHeader carries a per-call id so the retry can be correlated
	// with its original on the backend.
	RequestIDHeader = "X-Request-Id"
)

// Coordinator is the refresh surface the transport needs; satisfied by
// authgate.RefreshCoordinator.
type Coordinator interface {
	ShouldRefresh() bool
	PerformSilentRefresh(ctx context.Context) bool
}

// Config configures a Transport.
type Config struct {
	// BackendHosts lists the request hosts (host or host:port) that belong
	// to the application backend. Requests to any other host pass through
	// without interception.
	BackendHosts []string

	// Base is the wrapped RoundTripper; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// Transport is the intercepting RoundTripper. Safe for concurrent use.
type Transport struct {
	coord   Coordinator
	base    http.RoundTripper
	backend map[string]bool
}

// New creates a Transport around the given coordinator.
func New(coord Coordinator, cfg Config) *Transport {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	backend := make(map[string]bool, len(cfg.BackendHosts))
	for _, h := range cfg.BackendHosts {
		backend[h] = true
	}
	return &Transport{coord: coord, base: base, backend: backend}
}

// Client returns an http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.backend[req.URL.Host] {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	if t.coord.ShouldRefresh() {
		// Best effort: a failed pre-flight refresh means the request rides
		// on the existing credential.
		t.coord.PerformSilentRefresh(req.Context())
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Header.Get(RetryHeader) != "" {
		return resp, nil
	}

	retry, ok := t.retriableClone(req)
	if !ok {
		return resp, nil
	}
	if !t.coord.PerformSilentRefresh(req.Context()) {
		return resp, nil
	}

	// The first response is abandoned; drain it so the connection can be
	// reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return t.base.RoundTrip(retry)
}

// retriableClone produces the one retry request, marked so a second 401
// cannot loop. Requests with a body that cannot be replayed (no GetBody)
// are not retried.
func (t *Transport) retriableClone(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	retry.Header.Set(RetryHeader, "1")

	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}
