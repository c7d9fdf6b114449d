package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/tripora/authgate/claims"
)

// SessionData mirrors the identity-provider session read without importing
// the root package.
type SessionData struct {
	Credential string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// FailureKind classifies validation failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureNoSession: no credential at all. Authenticated is false.
	FailureNoSession
	// FailureSessionFetch: the session source itself errored.
	FailureSessionFetch
	// FailureProfileFetch: credential present but the profile store errored.
	FailureProfileFetch
	// FailureInvalidCredential: structural/signature/expiry rejection.
	FailureInvalidCredential
)

// ValidateOutcome is the classified result of one validation run.
type ValidateOutcome struct {
	Failure       FailureKind
	Authenticated bool
	Errors        []string
	Warnings      []string
	Report        claims.Report
	Attributes    map[string]string
	NeedsRenewal  bool
}

// ValidateDeps captures the external capabilities one validation run needs.
type ValidateDeps struct {
	FetchSession      func(ctx context.Context, forceRenew bool) (*SessionData, error)
	FetchAttributes   func(ctx context.Context) (map[string]string, error)
	LastProfileUpdate func(ctx context.Context) (time.Time, error)
	Verify            func(credential string) claims.Report
	Now               func() time.Time
	RenewalThreshold  time.Duration
}

// RunValidate executes one session validation: provider session fetch,
// profile attribute fetch, claim verification, renewal-staleness check.
// It never returns an error; every failure path yields a classified outcome
// with ordered Errors.
func RunValidate(ctx context.Context, forceRenew bool, deps ValidateDeps) ValidateOutcome {
	sess, err := deps.FetchSession(ctx, forceRenew)
	if err != nil {
		return ValidateOutcome{
			Failure: FailureSessionFetch,
			Errors:  []string{fmt.Sprintf("session fetch failed: %v", err)},
		}
	}
	if sess == nil || sess.Credential == "" {
		return ValidateOutcome{
			Failure: FailureNoSession,
			Errors:  []string{"no active session"},
		}
	}

	// Attributes are fetched only once a credential is known to exist, so an
	// unauthenticated caller never triggers an authorization call.
	attrs, err := deps.FetchAttributes(ctx)
	if err != nil {
		return ValidateOutcome{
			Failure:       FailureProfileFetch,
			Authenticated: true,
			Errors:        []string{fmt.Sprintf("profile attributes unavailable: %v", err)},
		}
	}

	report := deps.Verify(sess.Credential)
	if !report.Valid {
		return ValidateOutcome{
			Failure:       FailureInvalidCredential,
			Authenticated: true,
			Errors:        report.Errors,
			Warnings:      report.Warnings,
			Report:        report,
			Attributes:    attrs,
		}
	}

	outcome := ValidateOutcome{
		Authenticated: true,
		Warnings:      report.Warnings,
		Report:        report,
		Attributes:    attrs,
	}

	marker, err := deps.LastProfileUpdate(ctx)
	if err != nil {
		// The marker only accelerates renewal; its absence must not fail
		// an otherwise valid session.
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("profile update marker unavailable: %v", err))
		marker = time.Time{}
	}

	outcome.NeedsRenewal = needsRenewal(report, sess, marker, deps.Now(), deps.RenewalThreshold)
	return outcome
}

// needsRenewal applies the two renewal triggers: time-to-expiry below the
// threshold, or an out-of-band profile-update marker newer than the
// timestamp the credential carries.
func needsRenewal(report claims.Report, sess *SessionData, marker, now time.Time, threshold time.Duration) bool {
	exp := sess.ExpiresAt
	if report.Claims != nil && report.Claims.ExpiresAt != nil {
		exp = report.Claims.ExpiresAt.Time
	}
	if !exp.IsZero() && exp.Sub(now) < threshold {
		return true
	}

	credStamp := sess.IssuedAt
	if report.Claims != nil {
		if report.Claims.ProfileUpdatedAt != nil {
			credStamp = report.Claims.ProfileUpdatedAt.Time
		} else if report.Claims.IssuedAt != nil {
			credStamp = report.Claims.IssuedAt.Time
		}
	}
	if !marker.IsZero() && marker.After(credStamp) {
		return true
	}

	return false
}
