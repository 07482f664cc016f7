package observability

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts ledger write outcomes. It satisfies the observer ports
// of the journals service and the period lock enforcer.
type LedgerMetrics struct {
	posted    *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewLedgerMetrics registers ledger counters against registerer.
func NewLedgerMetrics(registerer prometheus.Registerer) *LedgerMetrics {
	posted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_ledger_entries_posted_total",
		Help: "Journal entries that reached POSTED, by source.",
	}, []string{"source"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_ledger_tx_conflicts_total",
		Help: "Ledger transactions abandoned after serialization conflicts.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_ledger_lock_rejections_total",
		Help: "Writes refused because the entry date falls in a locked period.",
	}, []string{"module"})
	registerer.MustRegister(posted, conflicts, rejected)
	return &LedgerMetrics{posted: posted, conflicts: conflicts, rejected: rejected}
}

// EntryPosted increments the posted counter.
func (m *LedgerMetrics) EntryPosted(source string) {
	if m == nil {
		return
	}
	m.posted.WithLabelValues(source).Inc()
}

// TxConflict increments the conflict counter.
func (m *LedgerMetrics) TxConflict(operation string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(operation).Inc()
}

// LockRejected increments the rejection counter.
func (m *LedgerMetrics) LockRejected(module string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(module).Inc()
}
