package authgate

import "errors"

var (
	// ErrNoSession indicates that no credential is present at all. It is
	// distinct from ErrInvalidCredential: an absent session redirects to
	// login, an invalid one does not.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidCredential indicates a structural, signature, or expiry
	// failure reported by the credential verifier.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrRenewalFailed indicates the identity provider refused or errored
	// while minting a new credential.
	ErrRenewalFailed = errors.New("credential renewal failed")
	// ErrSystem indicates an unexpected failure from an external call
	// (session source, profile source).
	ErrSystem = errors.New("unexpected system error")
	// ErrEngineNotReady is returned by Build when required dependencies
	// are missing.
	ErrEngineNotReady = errors.New("engine not initialized")
)
