package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	TxOutcomeRetried   = "retried"
	TxOutcomeRecovered = "recovered"
	TxOutcomeExhausted = "exhausted"
)

// TxMetrics counts serializable transaction retries.
type TxMetrics struct {
	retries *prometheus.CounterVec
}

func NewTxMetrics(reg prometheus.Registerer) *TxMetrics {
	if reg == nil {
		return &TxMetrics{}
	}
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_retries_total",
		Help:      "Serializable transaction retry outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(retries)
	return &TxMetrics{retries: retries}
}

func (m *TxMetrics) ObserveRetry(outcome string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(outcome)).Inc()
}
