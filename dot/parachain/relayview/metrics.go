// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package relayview

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "collator_relay_view"

type metrics struct {
	best              prometheus.Gauge
	finalized         prometheus.Gauge
	included          prometheus.Gauge
	finalizedIncluded prometheus.Gauge
	available         prometheus.Gauge
	updates           prometheus.Counter
}

func newMetrics() *metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	return &metrics{
		best:              gauge("best_number", "Number of the relay chain best block."),
		finalized:         gauge("finalized_number", "Number of the relay chain finalized block."),
		included:          gauge("included_number", "Number of the parachain head included as of the best block."),
		finalizedIncluded: gauge("finalized_included_number", "Number of the parachain head included as of the finalized block."),
		available:         gauge("available", "Whether the relay chain is reachable."),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "updates_total",
			Help:      "Number of relay views published.",
		}),
	}
}

func (m *metrics) observe(view *View) {
	m.best.Set(float64(view.Best.Number))
	m.finalized.Set(float64(view.Finalized.Number))
	m.included.Set(float64(view.LastIncluded.Number()))
	m.finalizedIncluded.Set(float64(view.FinalizedIncluded.Number()))
	m.updates.Inc()
}

// RegisterMetrics registers the tracker metrics with registerer.
func (t *Tracker) RegisterMetrics(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		t.metrics.best, t.metrics.finalized, t.metrics.included,
		t.metrics.finalizedIncluded, t.metrics.available, t.metrics.updates,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return fmt.Errorf("registering relay view metrics: %w", err)
		}
	}
	return nil
}
