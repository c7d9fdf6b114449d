package middleware

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"

	authgate "github.com/tripora/authgate"
	"github.com/tripora/authgate/permission"
)

// Machine-readable redirect reasons.
const (
	ReasonLoginRequired   = "login_required"
	ReasonForbidden       = "forbidden"
	ReasonPendingApproval = "pending_approval"
	ReasonGroupRequired   = "group_required"
)

// Default redirect locations; override per requirement or per guard.
const (
	DefaultLoginPath           = "/login"
	DefaultForbiddenPath       = "/forbidden"
	DefaultPendingApprovalPath = "/pending-approval"
)

// Requirement describes what a route demands of the caller.
type Requirement struct {
	// Roles the caller may hold; empty means any authenticated role.
	Roles []permission.Role

	// RequireApproval additionally demands IsApproved on the permission set.
	RequireApproval bool

	// RequireGroup additionally demands InRequiredGroup.
	RequireGroup bool

	// RedirectTarget overrides the location for forbidden/pending
	// redirects; the login redirect always goes to the guard's login path.
	RedirectTarget string
}

// Decision is the tagged outcome of evaluating a requirement. Exactly one of
// Allowed/redirect applies: when Allowed is true, Result carries the
// validated result; otherwise Target, Reason, and (for approval and group
// denials) Role and Message describe the redirect.
type Decision struct {
	Allowed bool
	Result  *authgate.ValidationResult

	Target  string
	Reason  string
	Role    permission.Role
	Message string
}

// Evaluate maps a validation result and a requirement to a decision. Pure:
// no I/O, no navigation, never panics on nil results.
func Evaluate(res *authgate.ValidationResult, req Requirement) Decision {
	if res == nil || !res.Authenticated {
		return Decision{
			Target: DefaultLoginPath,
			Reason: ReasonLoginRequired,
		}
	}
	if !res.Valid || res.Permissions == nil {
		// Authenticated but the credential did not validate; the caller
		// holds a session, so forbidden rather than login.
		return Decision{
			Target: fallback(req.RedirectTarget, DefaultForbiddenPath),
			Reason: ReasonForbidden,
		}
	}

	perms := res.Permissions
	if len(req.Roles) > 0 && !slices.Contains(req.Roles, perms.Role) {
		return Decision{
			Target: fallback(req.RedirectTarget, DefaultForbiddenPath),
			Reason: ReasonForbidden,
			Role:   perms.Role,
		}
	}
	if req.RequireApproval && !perms.IsApproved {
		return Decision{
			Target:  fallback(req.RedirectTarget, DefaultPendingApprovalPath),
			Reason:  ReasonPendingApproval,
			Role:    perms.Role,
			Message: perms.Role.String() + " account is awaiting approval",
		}
	}
	if req.RequireGroup && !perms.InRequiredGroup {
		return Decision{
			Target:  fallback(req.RedirectTarget, DefaultPendingApprovalPath),
			Reason:  ReasonGroupRequired,
			Role:    perms.Role,
			Message: perms.Role.String() + " account is not in its required group",
		}
	}

	return Decision{Allowed: true, Result: res}
}

// RedirectURL renders the decision's redirect location with the reason, the
// callback reference, and a state token as query parameters.
func (d Decision) RedirectURL(callback string) string {
	u, err := url.Parse(d.Target)
	if err != nil {
		u = &url.URL{Path: DefaultLoginPath}
	}
	q := u.Query()
	q.Set("reason", d.Reason)
	if callback != "" {
		q.Set("callback", callback)
	}
	if d.Reason == ReasonPendingApproval || d.Reason == ReasonGroupRequired {
		q.Set("role", d.Role.String())
		q.Set("message", d.Message)
	}
	q.Set("state", uuid.NewString())
	u.RawQuery = q.Encode()
	return u.String()
}

type resultContextKey struct{}

// ResultFromContext returns the validation result injected by RequireRole.
func ResultFromContext(ctx context.Context) (*authgate.ValidationResult, bool) {
	res, ok := ctx.Value(resultContextKey{}).(*authgate.ValidationResult)
	return res, ok
}

// RequireRole is the http middleware form of the guard: it validates the
// session, evaluates the requirement, and either injects the result into the
// request context or performs the redirect the decision names.
func RequireRole(engine *authgate.Engine, req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res := engine.Validate(r.Context(), false)
			decision := Evaluate(res, req)
			if !decision.Allowed {
				http.Redirect(w, r, decision.RedirectURL(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), resultContextKey{}, decision.Result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
