package authgate

import (
	"context"
	"time"

	"github.com/tripora/authgate/claims"
	"github.com/tripora/authgate/internal/flows"
	"github.com/tripora/authgate/permission"
)

// Session is the identity-provider session read returned by [SessionSource].
// Credential is the raw bearer token; IssuedAt and ExpiresAt mirror its
// registered claims so callers can inspect lifetime without decoding.
type Session struct {
	Credential string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// SessionSource reads the live identity-provider session. forceRenew asks the
// provider to mint a fresh credential before returning; implementations must
// return a nil Session (not an error) when no session exists at all.
type SessionSource interface {
	FetchSession(ctx context.Context, forceRenew bool) (*Session, error)
}

// ProfileSource reads out-of-band profile attributes for the current caller.
// LastProfileUpdate returns the marker recorded by the most recent profile
// mutation; a zero time means no mutation has been recorded.
type ProfileSource interface {
	FetchAttributes(ctx context.Context) (map[string]string, error)
	LastProfileUpdate(ctx context.Context) (time.Time, error)
}

// ProfileRecorder records the last-profile-update marker. Profile stores that
// implement both ProfileSource and ProfileRecorder let the critical-attribute
// handler invalidate stale credentials across processes.
type ProfileRecorder interface {
	RecordProfileUpdate(ctx context.Context, at time.Time) error
}

// CredentialVerifier performs the cryptographic and structural check of a
// bearer credential. The default implementation is [claims.Validator].
type CredentialVerifier interface {
	Verify(credential string) claims.Report
}

// Identity describes the authenticated caller. Present on a
// [ValidationResult] only when Authenticated is true and the credential's
// claims decoded successfully.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
	Role        permission.Role
}

// ValidationResult is the single output of [Engine.Validate]. A result with
// Authenticated false always has Valid false and carries no Identity or
// Permissions. A fresh result is produced on every call; nothing is cached.
type ValidationResult struct {
	Valid         bool
	Authenticated bool
	Identity      *Identity
	Permissions   *permission.Set
	Errors        []string
	Warnings      []string
	NeedsRenewal  bool

	failure flows.FailureKind
}

// Err maps the result onto the sentinel error taxonomy for callers that
// branch with errors.Is: nil for a valid result, [ErrNoSession] when no
// credential was present, [ErrInvalidCredential] for a rejected credential,
// [ErrSystem] when the session or profile infrastructure failed. The
// human-readable detail stays in Errors.
func (r *ValidationResult) Err() error {
	if r == nil {
		return ErrSystem
	}
	switch r.failure {
	case flows.FailureNone:
		return nil
	case flows.FailureNoSession:
		return ErrNoSession
	case flows.FailureInvalidCredential:
		return ErrInvalidCredential
	default:
		return ErrSystem
	}
}

// AttributeChange is returned by [Engine.HandleAttributeMutation]. Renewed
// reports whether the forced renewal produced a valid result; ReloadRequired
// is set when a critical attribute (role, approval flags) changed and
// already-rendered state must be rebuilt, not just re-fetched.
type AttributeChange struct {
	Renewed        bool
	ReloadRequired bool
	Critical       []string
}
