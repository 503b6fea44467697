package metrics

import "github.com/prometheus/client_golang/prometheus"

// EscrowMetrics tracks order transitions and coin flows.
type EscrowMetrics struct {
	transitions *prometheus.CounterVec
	coins       *prometheus.CounterVec
}

func NewEscrowMetrics(reg prometheus.Registerer) *EscrowMetrics {
	if reg == nil {
		return &EscrowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order state transitions by target status and trigger.",
	}, []string{"status", "trigger"})
	coins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wallet",
		Name:      "coins_moved_total",
		Help:      "Coins moved through the wallet ledger by entry kind.",
	}, []string{"kind"})
	reg.MustRegister(transitions, coins)
	return &EscrowMetrics{transitions: transitions, coins: coins}
}

func (m *EscrowMetrics) IncTransition(status, trigger string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status), normalizeLabel(trigger)).Inc()
}

func (m *EscrowMetrics) AddCoins(kind string, amount int64) {
	if m == nil || m.coins == nil || amount <= 0 {
		return
	}
	m.coins.WithLabelValues(normalizeLabel(kind)).Add(float64(amount))
}
