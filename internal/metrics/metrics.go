// Package metrics exports INTERCEPT's process- and queue-health
// gauges to Prometheus, mirroring ap.httpd's registration of a
// prometheus.Summary and its promhttp.Handler() wiring at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unipheas/intercept/internal/eventbus"
	"github.com/unipheas/intercept/internal/process"
)

// ModeSource is satisfied by every mode controller: enough to surface
// its slot and bus as Prometheus gauges without metrics depending on
// the modes package (which would be a cyclic import).
type ModeSource interface {
	Bus() *eventbus.Bus
}

// SlotStatus is implemented by the subset of a mode controller's
// process slot needed for the running/pid gauges.
type SlotStatus interface {
	Running() bool
	PID() int
}

// Register wires one set of gauges per named mode, each reading live
// from the mode's bus/slot at scrape time via GaugeFunc rather than
// being pushed to on every state change.
func Register(modes map[string]ModeSource, slots map[string]SlotStatus) {
	for name, m := range modes {
		name, m := name, m
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "intercept_queue_depth",
				Help:        "Number of events currently retained in a mode's event bus backlog.",
				ConstLabels: prometheus.Labels{"mode": name},
			},
			func() float64 { return float64(m.Bus().QueueLen()) },
		))
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "intercept_subscribers",
				Help:        "Number of live SSE subscribers attached to a mode's event bus.",
				ConstLabels: prometheus.Labels{"mode": name},
			},
			func() float64 { return float64(m.Bus().SubscriberCount()) },
		))
	}

	for name, s := range slots {
		name, s := name, s
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "intercept_pipeline_running",
				Help:        "Whether a mode's supervised decoder pipeline is currently running (1) or not (0).",
				ConstLabels: prometheus.Labels{"mode": name},
			},
			func() float64 {
				if s.Running() {
					return 1
				}
				return 0
			},
		))
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "intercept_pipeline_rss_bytes",
				Help:        "Resident set size of a mode's currently running decoder process.",
				ConstLabels: prometheus.Labels{"mode": name},
			},
			func() float64 { return float64(process.RSS(s.PID())) },
		))
	}
}
