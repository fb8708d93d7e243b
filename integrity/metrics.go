package integrity

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/chesttrack/hooking"
)

// MetricsHook exports scanner and listener activity as Prometheus metrics.
type MetricsHook struct {
	refills   prometheus.Counter
	sweeps    prometheus.Counter
	resets    prometheus.Counter
	checked   prometheus.Counter
	evictions *prometheus.CounterVec
}

// NewMetricsHook creates the metrics and registers them with reg.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	h := &MetricsHook{
		refills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chesttrack",
			Subsystem: "integrity",
			Name:      "refills_total",
			Help:      "Snapshots taken to start a sweep.",
		}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chesttrack",
			Subsystem: "integrity",
			Name:      "sweeps_completed_total",
			Help:      "Sweeps that examined every entry of their snapshot.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chesttrack",
			Subsystem: "integrity",
			Name:      "sweeps_abandoned_total",
			Help:      "Sweeps discarded before completion.",
		}),
		checked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chesttrack",
			Subsystem: "integrity",
			Name:      "entries_checked_total",
			Help:      "Memories examined by the scanner.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chesttrack",
			Subsystem: "integrity",
			Name:      "evictions_total",
			Help:      "Memories removed, by cause.",
		}, []string{"cause"}),
	}

	reg.MustRegister(h.refills, h.sweeps, h.resets, h.checked, h.evictions)

	return h
}

// Func updates the counter that matches the hook position.
func (h *MetricsHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosRefill:
		h.refills.Inc()
	case HookPosSweepComplete:
		h.sweeps.Inc()
	case HookPosReset:
		h.resets.Inc()
	case HookPosEntryChecked:
		h.checked.Inc()
	case HookPosEvict:
		ev, ok := ctx.Detail.(Eviction)
		if !ok {
			return
		}

		h.evictions.WithLabelValues(ev.Cause.String()).Inc()
	}
}
