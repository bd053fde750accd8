package prover

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"umbra/pkg/domain"
)

// Metrics provides observability for proof generation.
type Metrics struct {
	// Proof latency by operation
	ProveLatency *prometheus.HistogramVec

	// Proof outcomes by operation and result
	ProveOutcome *prometheus.CounterVec
}

// NewMetrics registers the prover metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProveLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "umbra_prover_prove_duration_seconds",
			Help:    "Duration of proof generation by operation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),

		ProveOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "umbra_prover_proofs_total",
			Help: "Total proof requests by operation and result",
		}, []string{"operation", "result"}), // result: "ok", "error"
	}
}

func (m *Metrics) observe(op domain.Operation, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ProveLatency.WithLabelValues(string(op)).Observe(d.Seconds())
	m.ProveOutcome.WithLabelValues(string(op), result).Inc()
}

// Instrumented records latency and outcome of every call to the wrapped gateway.
type Instrumented struct {
	next    Gateway
	metrics *Metrics
}

func Instrument(next Gateway, m *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (i *Instrumented) ProveTransfer(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	start := time.Now()
	res, err := i.next.ProveTransfer(ctx, req)
	i.metrics.observe(domain.OperationTransfer, time.Since(start), err)
	return res, err
}

func (i *Instrumented) ProveDeposit(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	start := time.Now()
	res, err := i.next.ProveDeposit(ctx, req)
	i.metrics.observe(domain.OperationDeposit, time.Since(start), err)
	return res, err
}

func (i *Instrumented) ProveWithdrawal(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	start := time.Now()
	res, err := i.next.ProveWithdrawal(ctx, req)
	i.metrics.observe(domain.OperationWithdrawal, time.Since(start), err)
	return res, err
}
