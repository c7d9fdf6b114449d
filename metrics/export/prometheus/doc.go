// Package prometheus renders authgate metric snapshots in the Prometheus
// text exposition format. It deliberately takes a snapshot dependency only:
// no client library, no global registry, no background goroutine.
package prometheus
