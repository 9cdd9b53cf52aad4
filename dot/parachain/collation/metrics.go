// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package collation

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "collator_collation"

type metrics struct {
	cycles        *prometheus.CounterVec
	stage         prometheus.Gauge
	buildDuration prometheus.Histogram
	povSize       prometheus.Histogram
	proofFaults   prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cycles_total",
			Help:      "Number of authoring cycles by outcome.",
		}, []string{"outcome"}),
		stage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "stage",
			Help:      "Current stage of the authoring cycle.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Time from authorization to submission of a candidate.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 6, 12},
		}),
		povSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pov_size_bytes",
			Help:      "Size of the submitted proofs of validity.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		proofFaults: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "consecutive_proof_faults",
			Help:      "Number of consecutive proof construction failures.",
		}),
	}
}

// RegisterMetrics registers the pipeline metrics with registerer.
func (p *Pipeline) RegisterMetrics(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		p.metrics.cycles, p.metrics.stage, p.metrics.buildDuration,
		p.metrics.povSize, p.metrics.proofFaults,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return fmt.Errorf("registering collation metrics: %w", err)
		}
	}
	return nil
}
