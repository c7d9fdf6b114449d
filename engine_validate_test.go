package authgate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripora/authgate/claims"
	"github.com/tripora/authgate/permission"
)

func TestValidateNoSession(t *testing.T) {
	clock := newTestClock()
	sessions := &scriptedSessions{}
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{}, verifierFunc(func(string) claims.Report {
		t.Fatal("verifier must not run without a credential")
		return claims.Report{}
	}))

	res := engine.Validate(context.Background(), false)

	if res.Valid || res.Authenticated {
		t.Fatalf("expected unauthenticated invalid result, got %+v", res)
	}
	if res.Identity != nil || res.Permissions != nil {
		t.Fatal("no-session result must carry no identity or permissions")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "no active session" {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !errors.Is(res.Err(), ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", res.Err())
	}
	if got := engine.metrics.Value(MetricValidateNoSession); got != 1 {
		t.Fatalf("expected 1 no-session metric, got %d", got)
	}
}

func TestValidateSessionFetchError(t *testing.T) {
	clock := newTestClock()
	sessions := &scriptedSessions{err: errors.New("provider unreachable")}
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{}, verifierFunc(func(string) claims.Report {
		return claims.Report{}
	}))

	res := engine.Validate(context.Background(), false)

	if res.Valid || res.Authenticated {
		t.Fatalf("expected unauthenticated invalid result, got %+v", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "session fetch failed") {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestValidateInvalidCredentialKeepsIdentity(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "expired-token",
		IssuedAt:   now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}}
	verifier := verifierFunc(func(string) claims.Report {
		return claims.Report{
			UserID: "u-42",
			Role:   permission.RoleOperator,
			Claims: &claims.Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u-42"},
			},
			Errors: []string{"credential expired"},
		}
	})
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{}, verifier)

	res := engine.Validate(context.Background(), false)

	if res.Valid {
		t.Fatal("expired credential must not validate")
	}
	if !res.Authenticated {
		t.Fatal("a present credential means the caller is authenticated")
	}
	if res.Identity == nil || res.Identity.ID != "u-42" {
		t.Fatalf("rejected credential with decoded claims must still name its holder, got %+v", res.Identity)
	}
	if res.Permissions != nil {
		t.Fatal("invalid result must carry no permissions")
	}
	if !errors.Is(res.Err(), ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", res.Err())
	}
	if got := engine.metrics.Value(MetricValidateFailure); got != 1 {
		t.Fatalf("expected 1 failure metric, got %d", got)
	}
}

func TestValidateHappyPath(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "good-token",
		IssuedAt:   now.Add(-time.Minute),
		ExpiresAt:  now.Add(time.Hour),
	}}
	profiles := &scriptedProfiles{attrs: map[string]string{
		permission.AttrDisplayName:      "Avery",
		permission.AttrEmail:            "avery@example.com",
		permission.AttrOperatorApproved: "true",
	}}
	verifier := verifierFunc(func(string) claims.Report {
		r := reportFor("u-7", permission.RoleOperator, now.Add(-time.Minute), now.Add(time.Hour))
		r.Claims.Groups = []string{permission.GroupOperators}
		r.Claims.DisplayName = "stale name"
		return r
	})
	engine := buildTestEngine(t, clock, sessions, profiles, verifier)

	res := engine.Validate(context.Background(), false)

	if !res.Valid || !res.Authenticated {
		t.Fatalf("expected valid result, got errors %v", res.Errors)
	}
	if res.NeedsRenewal {
		t.Fatal("credential with an hour left must not need renewal")
	}
	if res.Identity == nil || res.Identity.ID != "u-7" || res.Identity.Role != permission.RoleOperator {
		t.Fatalf("unexpected identity %+v", res.Identity)
	}
	if res.Identity.DisplayName != "Avery" || res.Identity.Email != "avery@example.com" {
		t.Fatalf("profile attributes must override credential claims, got %+v", res.Identity)
	}
	if res.Permissions == nil {
		t.Fatal("valid result must carry permissions")
	}
	if res.Err() != nil {
		t.Fatalf("valid result must map to a nil error, got %v", res.Err())
	}
	if !res.Permissions.CanCreateListings || !res.Permissions.IsApproved {
		t.Fatalf("approved in-group operator must get write permissions, got %+v", res.Permissions)
	}
	if got := engine.metrics.Value(MetricValidateSuccess); got != 1 {
		t.Fatalf("expected 1 success metric, got %d", got)
	}
}

func TestValidateFlagsRenewalNearExpiry(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "near-expiry",
		IssuedAt:   now.Add(-time.Hour),
		ExpiresAt:  now.Add(300 * time.Second),
	}}
	verifier := verifierFunc(func(string) claims.Report {
		return reportFor("u-1", permission.RoleTraveler, now.Add(-time.Hour), now.Add(300*time.Second))
	})
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{}, verifier)

	res := engine.Validate(context.Background(), false)

	if !res.Valid {
		t.Fatalf("expected valid result, got errors %v", res.Errors)
	}
	if !res.NeedsRenewal {
		t.Fatal("300s remaining is below the 600s threshold; renewal must be flagged")
	}
	if got := engine.metrics.Value(MetricRenewalFlagged); got != 1 {
		t.Fatalf("expected 1 renewal-flagged metric, got %d", got)
	}
}

func TestValidateFlagsRenewalOnNewerMarker(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()

	buildEngine := func(marker time.Time, profileUpdatedAt time.Time) *Engine {
		sessions := &scriptedSessions{session: &Session{
			Credential: "token",
			IssuedAt:   now.Add(-time.Hour),
			ExpiresAt:  now.Add(2 * time.Hour),
		}}
		verifier := verifierFunc(func(string) claims.Report {
			r := reportFor("u-1", permission.RoleTraveler, now.Add(-time.Hour), now.Add(2*time.Hour))
			r.Claims.ProfileUpdatedAt = jwt.NewNumericDate(profileUpdatedAt)
			return r
		})
		return buildTestEngine(t, clock, sessions, &scriptedProfiles{marker: marker}, verifier)
	}

	fresh := buildEngine(now.Add(-30*time.Minute), now.Add(-10*time.Minute))
	if res := fresh.Validate(context.Background(), false); res.NeedsRenewal {
		t.Fatal("marker older than the credential's profile timestamp must not flag renewal")
	}

	stale := buildEngine(now.Add(-5*time.Minute), now.Add(-10*time.Minute))
	if res := stale.Validate(context.Background(), false); !res.NeedsRenewal {
		t.Fatal("marker newer than the credential's profile timestamp must flag renewal")
	}
}

func TestValidateMarkerFallsBackToIssuedAt(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "token",
		IssuedAt:   now.Add(-time.Hour),
		ExpiresAt:  now.Add(2 * time.Hour),
	}}
	// No profile_updated_at claim: the marker compares against iat.
	verifier := verifierFunc(func(string) claims.Report {
		return reportFor("u-1", permission.RoleTraveler, now.Add(-time.Hour), now.Add(2*time.Hour))
	})
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{marker: now.Add(-30 * time.Minute)}, verifier)

	if res := engine.Validate(context.Background(), false); !res.NeedsRenewal {
		t.Fatal("marker newer than iat must flag renewal when the credential carries no profile timestamp")
	}
}

func TestValidateProfileFetchError(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "token",
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}}
	profiles := &scriptedProfiles{attrErr: errors.New("store down")}
	engine := buildTestEngine(t, clock, sessions, profiles, verifierFunc(func(string) claims.Report {
		t.Fatal("verifier must not run when attributes are unavailable")
		return claims.Report{}
	}))

	res := engine.Validate(context.Background(), false)

	if res.Valid {
		t.Fatal("result must be invalid when the profile store is down")
	}
	if !res.Authenticated {
		t.Fatal("caller with a credential is authenticated even when the profile store is down")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "profile attributes unavailable") {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !errors.Is(res.Err(), ErrSystem) {
		t.Fatalf("expected ErrSystem, got %v", res.Err())
	}
}

func TestValidateMarkerFetchErrorIsWarningOnly(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "token",
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}}
	profiles := &scriptedProfiles{markerErr: errors.New("marker gone")}
	verifier := verifierFunc(func(string) claims.Report {
		return reportFor("u-1", permission.RoleTraveler, now, now.Add(time.Hour))
	})
	engine := buildTestEngine(t, clock, sessions, profiles, verifier)

	res := engine.Validate(context.Background(), false)

	if !res.Valid {
		t.Fatalf("a missing marker must not fail validation, got errors %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "profile update marker unavailable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected marker warning, got %v", res.Warnings)
	}
}

func TestValidateForceRenewReachesProvider(t *testing.T) {
	clock := newTestClock()
	now := clock.Now()
	sessions := &scriptedSessions{session: &Session{
		Credential: "token",
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	}}
	verifier := verifierFunc(func(string) claims.Report {
		return reportFor("u-1", permission.RoleTraveler, now, now.Add(time.Hour))
	})
	engine := buildTestEngine(t, clock, sessions, &scriptedProfiles{}, verifier)

	engine.Validate(context.Background(), true)

	if got := sessions.forced.Load(); got != 1 {
		t.Fatalf("expected 1 forced session fetch, got %d", got)
	}
}
