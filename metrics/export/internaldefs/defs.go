package internaldefs

import (
	authgate "github.com/tripora/authgate"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricValidateSuccess, Name: "authgate_validate_success_total", Help: "Validations producing a valid result."},
	{ID: authgate.MetricValidateFailure, Name: "authgate_validate_failure_total", Help: "Validations producing an invalid result for an authenticated caller."},
	{ID: authgate.MetricValidateNoSession, Name: "authgate_validate_no_session_total", Help: "Validations with no credential present."},
	{ID: authgate.MetricRenewalFlagged, Name: "authgate_renewal_flagged_total", Help: "Valid results whose credential was flagged for renewal."},
	{ID: authgate.MetricRefreshSuccess, Name: "authgate_refresh_success_total", Help: "Silent refreshes producing a valid credential."},
	{ID: authgate.MetricRefreshFailure, Name: "authgate_refresh_failure_total", Help: "Silent refreshes the identity provider refused."},
	{ID: authgate.MetricRefreshDeduped, Name: "authgate_refresh_deduped_total", Help: "Silent refreshes satisfied by the dedup window."},
	{ID: authgate.MetricRefreshShared, Name: "authgate_refresh_shared_total", Help: "Callers attached to an in-flight refresh."},
	{ID: authgate.MetricBackgroundCheck, Name: "authgate_background_check_total", Help: "Background safety-net ticks."},
	{ID: authgate.MetricProfileMutation, Name: "authgate_profile_mutation_total", Help: "Handled profile attribute mutations."},
	{ID: authgate.MetricCriticalMutation, Name: "authgate_critical_mutation_total", Help: "Mutations touching a critical attribute."},
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricValidateLatency, Name: "authgate_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the Prometheus le labels for the 8 fixed buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names the buckets for exporters that cannot use
// label characters (OTel instrument names).
var HistogramBoundSuffix = []string{
	"5ms",
	"10ms",
	"25ms",
	"50ms",
	"100ms",
	"250ms",
	"500ms",
	"inf",
}

// NormalizeBuckets pads or truncates a snapshot bucket slice to the fixed
// width so exporters never index out of range.
func NormalizeBuckets(buckets []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(buckets); i++ {
		out[i] = buckets[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(buckets [8]uint64) [8]uint64 {
	var out [8]uint64
	var sum uint64
	for i := 0; i < len(buckets); i++ {
		sum += buckets[i]
		out[i] = sum
	}
	return out
}
