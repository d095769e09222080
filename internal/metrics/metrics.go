// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wraps prometheus collectors behind a thin registerer,
// exposing the counters/gauges the consensus pipeline needs.
package metrics

import (
	luxmetric "github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the node's workers publish to.
type Metrics struct {
	Registry prometheus.Registerer

	UnitsAdmitted prometheus.Counter
	UnitsRejected *prometheus.CounterVec // by sdagerr.Kind
	StableMCI prometheus.Gauge
	FreeJoints prometheus.Gauge
	BusinessLatency prometheus.Histogram
	FinalizeLatency prometheus.Histogram
}

// New registers and returns the node's metric set. reg may be a
// github.com/luxfi/metric Factory-backed registerer or a plain
// prometheus.Registry; both satisfy prometheus.Registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = luxmetric.NewRegistry()
	}
	m := &Metrics{
		Registry: reg,
		UnitsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdag",
			Name: "units_admitted_total",
			Help: "Units accepted into the joint cache.",
		}),
		UnitsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sdag",
			Name: "units_rejected_total",
			Help: "Units rejected, labeled by error kind.",
		}, []string{"kind"}),
		StableMCI: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sdag",
			Name: "stable_mci",
			Help: "Highest main-chain index promoted to stable.",
		}),
		FreeJoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sdag",
			Name: "free_joints",
			Help: "Number of joints with no children.",
		}),
		BusinessLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sdag",
			Name: "business_apply_seconds",
			Help: "Time to validate+apply a unit's messages.",
		}),
		FinalizeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sdag",
			Name: "finalize_seconds",
			Help: "Time to compute and durably commit a unit's ball.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.UnitsAdmitted, m.UnitsRejected, m.StableMCI, m.FreeJoints,
		m.BusinessLatency, m.FinalizeLatency,
	} {
		_ = reg.Register(c)
	}
	return m
}

// NewNoOp returns a Metrics backed by a private registry, for tests that
// don't care about collection but still want non-nil collectors.
func NewNoOp() *Metrics {
	return New(prometheus.NewRegistry())
}
