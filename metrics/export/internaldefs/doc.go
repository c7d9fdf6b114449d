// Package internaldefs holds the shared metric name/help definitions so the
// Prometheus and OTel exporters render identical series without duplicating
// the list.
package internaldefs
