package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveChainCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveChain(OutcomeCompleted, 0.002)
	m.ObserveChain(OutcomeCompleted, 0.003)
	m.ObserveChain(OutcomeBudgetRejected, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(OutcomeBudgetRejected)))
	assert.InDelta(t, 0.005, testutil.ToFloat64(m.chainCostUSD), 1e-9)
}

func TestObserveStageAccumulatesCost(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStage("analyzer", "llama-3.1-8b", 0.5, 0.0001)
	m.ObserveStage("analyzer", "llama-3.1-8b", 0.7, 0.0002)

	assert.InDelta(t, 0.0003,
		testutil.ToFloat64(m.stageCostUSD.WithLabelValues("analyzer", "llama-3.1-8b")), 1e-9)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *ChainMetrics
	require.NotPanics(t, func() {
		m.ObserveStage("analyzer", "x", 1, 1)
		m.ObserveChain(OutcomeFailed, 0)
	})
}
