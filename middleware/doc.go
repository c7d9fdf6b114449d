// Package middleware gates routes on the engine's validation result.
//
// The decision logic is a pure function: [Evaluate] maps a ValidationResult
// and a [Requirement] to a tagged [Decision]: allow, or redirect with a
// machine-readable reason. No navigation happens inside the decision; the
// [RequireRole] http middleware (or the host's own routing layer) performs
// the redirect. This keeps redirects out of authorization logic and makes
// every branch directly testable.
//
// Redirect targets carry the reason, a callback reference to the originally
// requested location, and a state token, as query parameters.
package middleware
