// Package metrics exposes Prometheus counters for a running session,
// standing in for the teacher's hand-rolled counter/histogram registry
// (original pkg/metric had no export path; this repo wires the real
// client so the numbers are actually scrapeable, per SPEC_FULL.md
// "DOMAIN STACK").
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the counters/histograms updated once per completed
// security-day.
type Registry struct {
	reg *prometheus.Registry

	eventsTotal      prometheus.Counter
	shiftsTotal      prometheus.Counter
	daysTotal        prometheus.Counter
	chunkFlush       prometheus.Histogram
	writeSeconds     prometheus.Histogram
	fileBytesWritten prometheus.Counter
}

// New builds a Registry with namespace "qrsdp".
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		eventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrsdp", Name: "events_total", Help: "Simulated events written across all sessions.",
		}),
		shiftsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrsdp", Name: "book_shifts_total", Help: "Best-level depletion shifts across all sessions.",
		}),
		daysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrsdp", Name: "session_days_total", Help: "Completed security-days.",
		}),
		chunkFlush: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qrsdp", Name: "chunks_written_per_day", Help: "Chunks flushed per completed security-day.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		writeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qrsdp", Name: "session_write_seconds", Help: "Wall-clock seconds spent writing one security-day.",
			Buckets: prometheus.DefBuckets,
		}),
		fileBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrsdp", Name: "file_bytes_written_total", Help: "Compressed bytes written to disk across all sessions.",
		}),
	}
	reg.MustRegister(r.eventsTotal, r.shiftsTotal, r.daysTotal, r.chunkFlush, r.writeSeconds, r.fileBytesWritten)
	return r
}

// RecordDay folds one completed security-day's counters into the registry.
func (r *Registry) RecordDay(eventsWritten uint64, chunksWritten int, fileBytes uint64, writeSeconds float64) {
	r.eventsTotal.Add(float64(eventsWritten))
	r.daysTotal.Inc()
	r.chunkFlush.Observe(float64(chunksWritten))
	r.writeSeconds.Observe(writeSeconds)
	r.fileBytesWritten.Add(float64(fileBytes))
}

// RecordShifts adds n to the book-shift counter.
func (r *Registry) RecordShifts(n uint64) {
	r.shiftsTotal.Add(float64(n))
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
