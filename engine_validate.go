package authgate

import (
	"context"
	"strings"

	"github.com/tripora/authgate/internal/flows"
	"github.com/tripora/authgate/permission"
)

// Validate decides whether the caller is authenticated, what it may do, and
// whether its credential needs renewal. forceRenew asks the identity
// provider to mint a fresh credential before validating.
//
// Validate never returns an error: every failure path yields a result with
// populated Errors. A result with Authenticated false always has Valid
// false and carries no Identity or Permissions. A fresh result is produced
// on every call.
func (e *Engine) Validate(ctx context.Context, forceRenew bool) *ValidationResult {
	start := e.now()

	outcome := flows.RunValidate(ctx, forceRenew, flows.ValidateDeps{
		FetchSession:      e.fetchSession,
		FetchAttributes:   e.profiles.FetchAttributes,
		LastProfileUpdate: e.profiles.LastProfileUpdate,
		Verify:            e.verifier.Verify,
		Now:               e.now,
		RenewalThreshold:  e.config.Claims.RenewalThreshold,
	})

	res := e.assembleResult(outcome)
	e.noteValidation(ctx, res)
	e.metrics.Observe(MetricValidateLatency, e.now().Sub(start))
	return res
}

func (e *Engine) fetchSession(ctx context.Context, forceRenew bool) (*flows.SessionData, error) {
	sess, err := e.sessions.FetchSession(ctx, forceRenew)
	if err != nil || sess == nil {
		return nil, err
	}
	return &flows.SessionData{
		Credential: sess.Credential,
		IssuedAt:   sess.IssuedAt,
		ExpiresAt:  sess.ExpiresAt,
	}, nil
}

func (e *Engine) assembleResult(outcome flows.ValidateOutcome) *ValidationResult {
	res := &ValidationResult{
		Authenticated: outcome.Authenticated,
		Errors:        outcome.Errors,
		Warnings:      outcome.Warnings,
		NeedsRenewal:  outcome.NeedsRenewal,
		failure:       outcome.Failure,
	}

	if outcome.Failure != flows.FailureNone {
		// Identity is reported when the claims decoded, even for a rejected
		// credential: an expired token still names its holder, and the guard
		// needs that to pick the right redirect.
		if outcome.Authenticated && outcome.Report.Claims != nil && outcome.Report.UserID != "" {
			res.Identity = e.identityFrom(outcome)
		}
		return res
	}

	res.Valid = true
	res.Identity = e.identityFrom(outcome)

	groups := outcome.Report.Claims.Groups
	inGroup := permission.InRequiredGroup(outcome.Report.Role, groups)
	set := permission.Build(outcome.Report.Role, inGroup, permission.ParseAttributes(outcome.Attributes))
	res.Permissions = &set

	return res
}

func (e *Engine) identityFrom(outcome flows.ValidateOutcome) *Identity {
	c := outcome.Report.Claims
	id := &Identity{
		ID:          outcome.Report.UserID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Role:        outcome.Report.Role,
	}
	// Profile attributes are fresher than whatever was baked into the
	// credential.
	if v := outcome.Attributes[permission.AttrDisplayName]; v != "" {
		id.DisplayName = v
	}
	if v := outcome.Attributes[permission.AttrEmail]; v != "" {
		id.Email = v
	}
	return id
}

func (e *Engine) noteValidation(ctx context.Context, res *ValidationResult) {
	if e.coordinator != nil {
		e.coordinator.noteValidation(res.NeedsRenewal)
	}

	switch {
	case res.Valid:
		e.metrics.Inc(MetricValidateSuccess)
		if res.NeedsRenewal {
			e.metrics.Inc(MetricRenewalFlagged)
		}
	case res.Authenticated:
		e.metrics.Inc(MetricValidateFailure)
	default:
		e.metrics.Inc(MetricValidateNoSession)
	}

	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: e.now(),
		EventType: EventSessionValidate,
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
	if res.NeedsRenewal {
		event.Metadata = map[string]string{"needs_renewal": "true"}
	}
	e.audit.Emit(ctx, event)
}
