// Package claims decodes and verifies bearer credentials issued by the
// identity provider and extracts the caller's role.
//
// # Design
//
// [Validator] wraps github.com/golang-jwt/jwt/v5 with a fixed parser
// configuration: allowed signing methods only, optional issuer/audience
// pinning, bounded leeway, and a future-iat guard. Verification never panics
// and never returns a Go error to callers; every outcome is a [Report] with
// ordered Errors and Warnings, because the session validator upstream must
// distinguish "authenticated but invalid" from "not authenticated" without
// exception control flow.
//
// # Role extraction
//
// An explicit role claim wins. When absent, group-membership claims are
// consulted in fixed priority order (admins > operators > promoters >
// travelers). When nothing matches, the role defaults to traveler and a
// warning is recorded.
//
// # What this package must NOT do
//
//   - Perform I/O. The credential is verified locally against configured keys.
//   - Import authgate (the root package imports claims, never the reverse).
package claims
