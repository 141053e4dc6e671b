package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BoardMetrics counts controller outcomes. A nil *BoardMetrics records
// nothing.
type BoardMetrics struct {
	mutations *prometheus.CounterVec
	rollbacks prometheus.Counter
	keptLocal prometheus.Counter
	fallbacks prometheus.Counter
}

// NewBoardMetrics creates the board counters and registers them on reg.
func NewBoardMetrics(reg prometheus.Registerer) *BoardMetrics {
	m := &BoardMetrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowboard_mutations_total",
				Help: "Board mutations submitted to the task store",
			},
			[]string{"kind", "outcome"},
		),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowboard_status_rollbacks_total",
			Help: "Optimistic status changes reverted after a failed update",
		}),
		keptLocal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowboard_edits_kept_local_total",
			Help: "Edits kept on the board although the store rejected them",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowboard_seed_fallbacks_total",
			Help: "Board loads that fell back to the built-in seed list",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.mutations, m.rollbacks, m.keptLocal, m.fallbacks)
	}
	return m
}

func (m *BoardMetrics) mutation(kind MutationKind, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.mutations.WithLabelValues(string(kind), outcome).Inc()
}

func (m *BoardMetrics) rollback() {
	if m != nil {
		m.rollbacks.Inc()
	}
}

func (m *BoardMetrics) editKeptLocal() {
	if m != nil {
		m.keptLocal.Inc()
	}
}

func (m *BoardMetrics) fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}
