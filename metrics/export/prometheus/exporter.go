package prometheus

import (
	"net/http"

	"github.com/MrEthical07/memberauth"
	"github.com/MrEthical07/memberauth/metrics/export/internaldefs"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsSource interface {
	MetricsSnapshot() memberauth.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter is a prometheus.Collector over a store's in-process counters.
// Every scrape reads a fresh snapshot; nothing is cached between scrapes.
type Exporter struct {
	source metricsSource

	counters   []*prom.Desc
	histograms []*prom.Desc
	dropped    *prom.Desc
}

var _ prom.Collector = (*Exporter)(nil)

// NewExporter returns a collector reading from store.
func NewExporter(store *memberauth.Store) *Exporter {
	return NewExporterFromSource(store)
}

// NewExporterFromSource returns a collector reading from any snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	e := &Exporter{
		source:  source,
		dropped: prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counters = append(e.counters, prom.NewDesc(def.Name, def.Help, nil, nil))
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms = append(e.histograms, prom.NewDesc(def.Name, def.Help, nil, nil))
	}
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prom.Desc) {
	for _, d := range e.counters {
		ch <- d
	}
	for _, d := range e.histograms {
		ch <- d
	}
	ch <- e.dropped
}

// Collect implements prometheus.Collector. A disabled metrics set yields no
// samples except the audit drop counter.
func (e *Exporter) Collect(ch chan<- prom.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()
	ch <- prom.MustNewConstMetric(e.dropped, prom.CounterValue, float64(e.source.AuditDropped()))
	if len(snapshot.Counters) == 0 {
		return
	}

	for i, def := range internaldefs.CounterDefs {
		ch <- prom.MustNewConstMetric(e.counters[i], prom.CounterValue, float64(snapshot.Counters[def.ID]))
	}

	for i, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for j, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[j]
		}
		count := cumulative[len(cumulative)-1]
		sum := snapshot.LatencySums[def.ID].Seconds()
		ch <- prom.MustNewConstHistogram(e.histograms[i], count, sum, buckets)
	}
}

// Handler serves the exporter from a private registry, leaving the global
// registry untouched.
func (e *Exporter) Handler() http.Handler {
	reg := prom.NewRegistry()
	reg.MustRegister(e)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
