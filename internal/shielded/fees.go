package shielded

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"umbra/internal/network"
	"umbra/pkg/domain"
)

const (
	lamportsPerSignature  = 5000
	shieldedBaseFee       = 10000
	proofVerificationFee  = 50000
	lamportsPerSOLDivisor = 1e9
)

var priorityFees = map[domain.FeeLevel]uint64{
	domain.FeeLevelLow:    1000,
	domain.FeeLevelMedium: 5000,
	domain.FeeLevelHigh:   10000,
}

// FeeEstimate is a fee breakdown in lamports.
type FeeEstimate struct {
	BaseFee              uint64  `json:"baseFee"`
	PriorityFee          uint64  `json:"priorityFee"`
	ProofVerificationFee uint64  `json:"proofVerificationFee,omitempty"`
	TotalFee             uint64  `json:"totalFee"`
	FeeInSOL             float64 `json:"feeInSol"`
}

func newEstimate(base, priority, proof uint64) FeeEstimate {
	total := base + priority + proof
	return FeeEstimate{
		BaseFee:              base,
		PriorityFee:          priority,
		ProofVerificationFee: proof,
		TotalFee:             total,
		FeeInSOL:             float64(total) / lamportsPerSOLDivisor,
	}
}

type FeeEstimator struct {
	node network.Node
}

func NewFeeEstimator(node network.Node) *FeeEstimator {
	return &FeeEstimator{node: node}
}

// PriorityFee returns the priority fee of a tier; unknown tiers price as medium.
func (f *FeeEstimator) PriorityFee(level domain.FeeLevel) uint64 {
	if fee, ok := priorityFees[level.OrDefault()]; ok {
		return fee
	}
	return priorityFees[domain.FeeLevelMedium]
}

// NetworkFees returns the priority fee of every tier.
func (f *FeeEstimator) NetworkFees() map[domain.FeeLevel]uint64 {
	out := make(map[domain.FeeLevel]uint64, len(priorityFees))
	for k, v := range priorityFees {
		out[k] = v
	}
	return out
}

// EstimateShieldedFee prices a shielded operation, which pays for on-chain
// proof verification on top of the base fee.
func (f *FeeEstimator) EstimateShieldedFee(level domain.FeeLevel) FeeEstimate {
	return newEstimate(shieldedBaseFee, f.PriorityFee(level), proofVerificationFee)
}

// EstimateFee prices tx at the current blockhash. The base fee comes from the
// node when it can price the message and from the signature count otherwise.
// Without a node the flat shielded estimate is returned.
func (f *FeeEstimator) EstimateFee(ctx context.Context, tx *solana.Transaction, level domain.FeeLevel) (FeeEstimate, error) {
	if f.node == nil {
		return f.EstimateShieldedFee(level), nil
	}
	blockhash, err := f.node.LatestBlockhash(ctx)
	if err != nil {
		return FeeEstimate{}, err
	}
	msg := tx.Message
	msg.RecentBlockhash = blockhash

	base, err := f.node.FeeForMessage(ctx, &msg)
	if err != nil {
		base = uint64(msg.Header.NumRequiredSignatures) * lamportsPerSignature
	}
	return newEstimate(base, f.PriorityFee(level), 0), nil
}
