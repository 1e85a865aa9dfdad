// Package otel publishes memberauth store metrics through OpenTelemetry.
//
// [NewExporter] registers an Int64ObservableCounter per store counter and one
// Int64ObservableGauge per latency histogram bucket. A single callback reads
// [memberauth.Store.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate store state.
package otel
