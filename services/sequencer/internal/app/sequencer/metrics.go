package sequencer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clob"

// Metrics are the per-market sequencing metrics.
type Metrics struct {
	AppliedSequence *prometheus.GaugeVec
	Messages        *prometheus.CounterVec
	Trades          *prometheus.CounterVec
	Volume          *prometheus.CounterVec
	Rejects         *prometheus.CounterVec
	Halts           *prometheus.CounterVec
	PersistRetries  *prometheus.CounterVec
	StepSeconds     *prometheus.HistogramVec
	RestingOrders   *prometheus.GaugeVec
}

// NewMetrics creates the sequencing metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AppliedSequence: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "applied_sequence",
			Help:      "Last consensus sequence committed for the market.",
		}, []string{"market"}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Consensus messages processed, by outcome.",
		}, []string{"market", "outcome"}),
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Trades emitted by the matching engine.",
		}, []string{"market"}),
		Volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Base units traded.",
		}, []string{"market"}),
		Rejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rejects_total",
			Help:      "Orders rejected, by reason.",
		}, []string{"market", "reason"}),
		Halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_halts_total",
			Help:      "Markets halted on a fatal condition.",
		}, []string{"market", "reason"}),
		PersistRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_retries_total",
			Help:      "Retried commits of a message delta.",
		}, []string{"market"}),
		StepSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_seconds",
			Help:      "Time to match and commit one consensus message.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"market"}),
		RestingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Orders resting in the book.",
		}, []string{"market"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AppliedSequence,
			m.Messages,
			m.Trades,
			m.Volume,
			m.Rejects,
			m.Halts,
			m.PersistRetries,
			m.StepSeconds,
			m.RestingOrders,
		)
	}
	return m
}
