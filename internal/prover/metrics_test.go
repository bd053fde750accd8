package prover

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/domain"
)

func TestInstrumented_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	g := Instrument(NewNoop(), m)
	ctx := context.Background()

	_, err := g.ProveTransfer(ctx, transferRequest(1))
	require.NoError(t, err)
	_, err = g.ProveTransfer(ctx, transferRequest(0))
	require.Error(t, err)

	dep := transferRequest(2)
	dep.Operation = domain.OperationDeposit
	_, err = g.ProveDeposit(ctx, dep)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProveOutcome.WithLabelValues("shielded_transfer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProveOutcome.WithLabelValues("shielded_transfer", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProveOutcome.WithLabelValues("shielded_deposit", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ProveLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	g := Instrument(NewNoop(), nil)

	_, err := g.ProveTransfer(context.Background(), transferRequest(1))
	assert.NoError(t, err)
}
