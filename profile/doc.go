// Package profile provides the out-of-band profile attribute sources the
// engine validates against: a Redis-backed store for server deployments and
// an in-memory source for clients and tests.
//
// # Key layout
//
// Attributes live in a hash at <prefix>:profile:attrs:<userID>; the
// last-profile-update marker is a unix-nano string at
// <prefix>:profile:updated:<userID>. The marker is written by the
// critical-attribute handler and read on every validation, so a credential
// minted before the last mutation is flagged for renewal in any process
// sharing the store.
//
// # Failure mapping
//
// Redis transport failures surface as [ErrStoreUnavailable] so callers can
// distinguish "no data" (empty map, zero marker) from "store down".
package profile
