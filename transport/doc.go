// Package transport wraps outbound HTTP calls to the Tripora backend with
// credential-lifecycle handling: a pre-flight renewal check and a single
// retry after an authorization failure.
//
// The wrapper is an explicit [net/http.RoundTripper] injected into the
// client that issues requests; nothing ambient is patched. Only requests
// targeting configured backend hosts are intercepted; third-party requests
// pass through untouched.
//
// # State machine per request
//
//  1. Pre-flight: if the coordinator reports a refresh is due, perform a
//     silent refresh (best effort; the request proceeds regardless).
//  2. Issue the request.
//  3. On a 401 response that is not already a post-refresh retry: silently
//     refresh, and on success reissue the exact request once, marked with
//     [RetryHeader]. The second response is returned as-is either way.
//
// At most one retried request per original call; renewal failures are never
// surfaced as transport errors.
package transport
