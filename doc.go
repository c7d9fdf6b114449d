// Package authgate decides whether a caller of the Tripora marketplace is
// authenticated, what that caller may do, whether its credential needs renewal,
// and how outbound requests are transparently retried after renewal.
//
// The package is designed for concurrent workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// [RefreshCoordinator], and value types (ValidationResult, Identity,
// MetricsSnapshot, etc.). Flow orchestration lives under internal/ and is never
// exported. Claim decoding lives in claims/, capability mapping in permission/,
// the outbound request wrapper in transport/, and route gating in middleware/.
//
// # What this package must NOT do
//
//   - Mint credentials or talk to the identity provider directly; both go
//     through the [SessionSource] the host wires in.
//   - Throw on validation failure: [Engine.Validate] always returns a
//     [ValidationResult] with populated Errors, never an error.
//   - Mutate ambient global state. The only long-lived mutable state is the
//     renewal timestamp owned by [RefreshCoordinator].
//
// # Renewal contract
//
// A failed silent renewal is never fatal. Callers proceed with the existing
// credential and expect at most one retry cycle on a downstream authorization
// failure; see [RefreshCoordinator.PerformSilentRefresh] and transport.
package authgate
