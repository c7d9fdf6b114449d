package authgate

import (
	"errors"
	"time"
)

// Config defines the engine-wide configuration tree.
//
// Config instances are intended to be set during initialization and then
// treated as immutable.
type Config struct {
	Claims   ClaimsConfig
	Refresh  RefreshConfig
	Critical CriticalConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
CLAIMS CONFIG
====================================
*/

// ClaimsConfig configures the default credential verifier and the renewal
// staleness threshold.
type ClaimsConfig struct {
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool

	// RenewalThreshold flags a credential for renewal when its remaining
	// lifetime drops below this duration. Default 600s.
	RenewalThreshold time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig configures the RefreshCoordinator.
type RefreshConfig struct {
	// MinInterval is both the dedup window for silent refreshes and the
	// secondary should-refresh heuristic. Default 30s.
	MinInterval time.Duration

	// BackgroundInterval is the period of the idle-session safety-net
	// check. Default 5m.
	BackgroundInterval time.Duration
}

/*
====================================
CRITICAL ATTRIBUTES
====================================
*/

// CriticalConfig configures the critical-attribute handler. An empty
// Attributes list means DefaultCriticalAttributes.
type CriticalConfig struct {
	Attributes []string
}

/*
====================================
AUDIT / METRICS
====================================
*/

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration the engine ships with.
func DefaultConfig() Config {
	return Config{
		Claims: ClaimsConfig{
			SigningMethod:    "ed25519",
			Leeway:           30 * time.Second,
			RenewalThreshold: 600 * time.Second,
		},
		Refresh: RefreshConfig{
			MinInterval:        30 * time.Second,
			BackgroundInterval: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks configuration bounds. Build calls it; hosts that assemble
// a Config by hand can call it early.
func (c *Config) Validate() error {
	if c.Claims.RenewalThreshold <= 0 {
		return errors.New("claims renewal threshold must be positive")
	}
	if c.Refresh.MinInterval <= 0 {
		return errors.New("refresh min interval must be positive")
	}
	if c.Refresh.BackgroundInterval <= 0 {
		return errors.New("refresh background interval must be positive")
	}
	if c.Refresh.BackgroundInterval < c.Refresh.MinInterval {
		return errors.New("background interval must not be shorter than min interval")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Claims.PrivateKey = append([]byte(nil), cfg.Claims.PrivateKey...)
	out.Claims.PublicKey = append([]byte(nil), cfg.Claims.PublicKey...)
	out.Critical.Attributes = append([]string(nil), cfg.Critical.Attributes...)
	return out
}
