package internaldefs

import (
	"github.com/MrEthical07/memberauth"
)

// CounterDef maps a store counter to its exported name.
type CounterDef struct {
	ID   memberauth.MetricID
	Name string
	Help string
}

// HistogramDef maps a store latency histogram to its exported name.
type HistogramDef struct {
	ID   memberauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: memberauth.MetricRestoreSuccess, Name: "memberauth_restore_success_total", Help: "Startup restores that installed a persisted session."},
	{ID: memberauth.MetricRestoreEmpty, Name: "memberauth_restore_empty_total", Help: "Startup restores that found no persisted session."},
	{ID: memberauth.MetricCacheCorruption, Name: "memberauth_cache_corruption_total", Help: "Startup restores that failed and purged the session cache."},
	{ID: memberauth.MetricCachePurgeFailure, Name: "memberauth_cache_purge_failure_total", Help: "Session cache deletes that returned an error."},
	{ID: memberauth.MetricLoginSuccess, Name: "memberauth_login_success_total", Help: "Logins that installed a session."},
	{ID: memberauth.MetricLoginFailure, Name: "memberauth_login_failure_total", Help: "Logins rejected by the auth client."},
	{ID: memberauth.MetricLogout, Name: "memberauth_logout_total", Help: "Logouts. Local state is always cleared."},
	{ID: memberauth.MetricLogoutRemoteFailure, Name: "memberauth_logout_remote_failure_total", Help: "Logouts whose remote notification failed."},
	{ID: memberauth.MetricStateChange, Name: "memberauth_state_change_total", Help: "Published session state changes."},
}

// HistogramDefs lists the exported latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: memberauth.MetricLoginLatency, Name: "memberauth_login_latency_seconds", Help: "Latency of the remote credential exchange."},
	{ID: memberauth.MetricLogoutLatency, Name: "memberauth_logout_latency_seconds", Help: "Latency of the remote logout call."},
}

// Audit events lost to dispatcher backpressure.
const (
	AuditDroppedName = "memberauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HistogramBoundSuffix names each of the eight buckets for exporters that
// publish one gauge per bucket.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the eight store buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
