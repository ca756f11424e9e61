package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus registry this repository exposes: cycles
// completed, conservation violations (a panic button -- it should always
// read zero), current epistemic debt, gate state, and refusals by reason
// code (SPEC_FULL.md DOMAIN STACK).
type Metrics struct {
	Registry               *prometheus.Registry
	CyclesCompleted        prometheus.Counter
	ConservationViolations prometheus.Counter
	EpistemicDebt          prometheus.Gauge
	GateState              *prometheus.GaugeVec
	Refusals               *prometheus.CounterVec
}

// NewMetrics builds a fresh, registered Metrics instance.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		CyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cellsim", Name: "cycles_completed_total", Help: "Agent cycles completed.",
		}),
		ConservationViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cellsim", Name: "conservation_violations_total", Help: "Hard conservation-invariant violations (should never increment).",
		}),
		EpistemicDebt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cellsim", Name: "epistemic_debt_bits", Help: "Current epistemic debt in bits.",
		}),
		GateState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cellsim", Name: "gate_state", Help: "1 on the currently active gate state, keyed by state label.",
		}, []string{"state"}),
		Refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellsim", Name: "refusals_total", Help: "Refused actions by reason code.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.CyclesCompleted, m.ConservationViolations, m.EpistemicDebt, m.GateState, m.Refusals)
	return m
}

// SetGateState updates the gate-state gauge vector so exactly one label
// reads 1.
func (m *Metrics) SetGateState(state string) {
	for _, s := range []string{"earned", "lost", "unknown"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		m.GateState.WithLabelValues(s).Set(v)
	}
}
