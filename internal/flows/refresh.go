package flows

import "time"

// ShouldRefresh reports whether a renewal attempt is warranted: either the
// last validation flagged the credential as needing renewal, or the minimum
// interval has passed since the last refresh attempt. The second trigger is
// a heuristic so repeated calls cannot starve renewal when staleness
// detection itself has gone stale; a zero lastRefresh counts as long ago.
func ShouldRefresh(needsRenewal bool, lastRefresh, now time.Time, minInterval time.Duration) bool {
	if needsRenewal {
		return true
	}
	return now.Sub(lastRefresh) > minInterval
}

// WithinDedupWindow reports whether a refresh completed recently enough that
// a new one should be skipped and treated as satisfied. This is a
// rate-limit, not a correctness guarantee: the credential obtained by the
// recent refresh is assumed still fresh.
func WithinDedupWindow(lastRefresh, now time.Time, minInterval time.Duration) bool {
	if lastRefresh.IsZero() {
		return false
	}
	return now.Sub(lastRefresh) < minInterval
}
