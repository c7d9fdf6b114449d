package authgate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tripora/authgate/claims"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Validate call.
type Builder struct {
	config   Config
	sessions SessionSource
	profiles ProfileSource
	recorder ProfileRecorder
	verifier CredentialVerifier

	auditSink AuditSink
	logger    *log.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSessionSource sets the identity-provider session read. Required.
func (b *Builder) WithSessionSource(s SessionSource) *Builder {
	b.sessions = s
	return b
}

// WithProfileSource sets the out-of-band profile attribute read. When the
// source also implements [ProfileRecorder], the critical-attribute handler
// records markers through it automatically.
func (b *Builder) WithProfileSource(p ProfileSource) *Builder {
	b.profiles = p
	return b
}

// WithProfileRecorder overrides where profile-update markers are recorded.
func (b *Builder) WithProfileRecorder(r ProfileRecorder) *Builder {
	b.recorder = r
	return b
}

// WithVerifier overrides the credential verifier. Without it, Build
// constructs a [claims.Validator] from Config.Claims.
func (b *Builder) WithVerifier(v CredentialVerifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLogger sets the logger for renewal-failure and marker-recording
// messages. Defaults to [log.Default].
func (b *Builder) WithLogger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides the time source. Tests use it to drive the renewal
// threshold and dedup window deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and wiring and returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.sessions == nil {
		return nil, fmt.Errorf("%w: session source is required", ErrEngineNotReady)
	}

	verifier := b.verifier
	if verifier == nil {
		v, err := claims.NewValidator(claims.Config{
			SigningMethod: claims.SigningMethod(b.config.Claims.SigningMethod),
			PrivateKey:    b.config.Claims.PrivateKey,
			PublicKey:     b.config.Claims.PublicKey,
			Issuer:        b.config.Claims.Issuer,
			Audience:      b.config.Claims.Audience,
			Leeway:        b.config.Claims.Leeway,
			RequireIAT:    b.config.Claims.RequireIAT,
		})
		if err != nil {
			return nil, fmt.Errorf("claims validator: %w", err)
		}
		verifier = v
	}

	profiles := b.profiles
	if profiles == nil {
		profiles = emptyProfileSource{}
	}

	recorder := b.recorder
	if recorder == nil {
		if r, ok := profiles.(ProfileRecorder); ok {
			recorder = r
		}
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	critical := b.config.Critical.Attributes
	if len(critical) == 0 {
		critical = DefaultCriticalAttributes
	}
	criticalSet := make(map[string]bool, len(critical))
	for _, name := range critical {
		criticalSet[name] = true
	}

	engine := &Engine{
		config:   b.config,
		sessions: b.sessions,
		profiles: profiles,
		recorder: recorder,
		verifier: verifier,
		critical: criticalSet,
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:  NewMetrics(b.config.Metrics),
		logger:   logger,
		now:      clock,
	}
	engine.coordinator = newRefreshCoordinator(engine, b.config.Refresh)

	b.built = true
	return engine, nil
}

// emptyProfileSource serves hosts whose identity provider embeds everything
// in the credential and keeps no separate profile store.
type emptyProfileSource struct{}

func (emptyProfileSource) FetchAttributes(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (emptyProfileSource) LastProfileUpdate(context.Context) (time.Time, error) {
	return time.Time{}, nil
}
