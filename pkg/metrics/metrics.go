// Package metrics instruments chain execution for Prometheus exposition.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded on the chain request counter.
const (
	OutcomeCompleted      = "completed"
	OutcomeInvalid        = "invalid"
	OutcomeBudgetRejected = "budget_rejected"
	OutcomeFailed         = "failed"
)

// ChainMetrics holds the collectors for the reply pipeline.
type ChainMetrics struct {
	requestsTotal *prometheus.CounterVec
	stageLatency  *prometheus.HistogramVec
	stageCostUSD  *prometheus.CounterVec
	chainCostUSD  prometheus.Counter
}

// New registers the chain collectors on reg and returns them.
func New(reg prometheus.Registerer) *ChainMetrics {
	factory := promauto.With(reg)
	return &ChainMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_chain_requests_total",
			Help: "Chain requests by outcome.",
		}, []string{"outcome"}),
		stageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bridge_stage_latency_seconds",
			Help:    "Wall-clock latency of individual stage calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"role", "model"}),
		stageCostUSD: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_stage_cost_usd_total",
			Help: "Accumulated per-stage cost in USD.",
		}, []string{"role", "model"}),
		chainCostUSD: factory.NewCounter(prometheus.CounterOpts{
			Name: "bridge_chain_cost_usd_total",
			Help: "Accumulated total chain cost in USD.",
		}),
	}
}

// ObserveStage records one completed stage call.
func (m *ChainMetrics) ObserveStage(role, model string, latencyS, costUSD float64) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(role, model).Observe(latencyS)
	m.stageCostUSD.WithLabelValues(role, model).Add(costUSD)
}

// ObserveChain records the outcome of one request. costUSD is only added
// for completed chains.
func (m *ChainMetrics) ObserveChain(outcome string, costUSD float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	if costUSD > 0 {
		m.chainCostUSD.Add(costUSD)
	}
}
