// Package metrics counts list store activity with Prometheus collectors.
//
// grocer is a short-lived CLI, so nothing is served over HTTP; the registry is
// dumped in the node_exporter textfile format when a metrics file is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idilsaglam/grocer/internal/liststore"
)

var _ liststore.Observer = (*Metrics)(nil)

// Metrics implements liststore.Observer.
type Metrics struct {
	reg       *prometheus.Registry
	mutations *prometheus.CounterVec
	saves     *prometheus.CounterVec
	loads     *prometheus.CounterVec
}

// New registers the grocer collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grocer",
			Name:      "mutations_total",
			Help:      "List mutations by operation and result.",
		}, []string{"op", "result"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grocer",
			Name:      "snapshot_saves_total",
			Help:      "Background snapshot writes by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grocer",
			Name:      "snapshot_loads_total",
			Help:      "Startup loads by outcome (found, empty, error).",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(m.mutations, m.saves, m.loads)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Mutated(op liststore.Op, err error) {
	m.mutations.WithLabelValues(string(op), result(err)).Inc()
}

func (m *Metrics) Saved(err error) {
	m.saves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Loaded(found bool, err error) {
	outcome := "empty"
	switch {
	case err != nil:
		outcome = "error"
	case found:
		outcome = "found"
	}
	m.loads.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes every collected metric to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
