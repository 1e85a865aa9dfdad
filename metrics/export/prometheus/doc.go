// Package prometheus exposes memberauth store metrics as a Prometheus collector.
//
// [NewExporter] wraps a [memberauth.Store]; register the returned collector in
// any registry, or mount [Exporter.Handler] which uses its own registry.
// Counter names are memberauth_*_total and the latency histograms are
// memberauth_login_latency_seconds and memberauth_logout_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate store state.
package prometheus
