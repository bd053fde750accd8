package prover

import (
	"context"

	"umbra/pkg/domain"
)

const (
	DummyTransferProof   = "DUMMY_PROOF_SHIELDED_TRANSFER"
	DummyDepositProof    = "DUMMY_PROOF_DEPOSIT"
	DummyWithdrawalProof = "DUMMY_PROOF_WITHDRAWAL"
)

// Noop returns fixed sentinel proofs. It is a test double and must not be
// configured in production.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) ProveTransfer(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return n.prove(req, domain.OperationTransfer, DummyTransferProof)
}

func (n *Noop) ProveDeposit(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return n.prove(req, domain.OperationDeposit, DummyDepositProof)
}

func (n *Noop) ProveWithdrawal(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return n.prove(req, domain.OperationWithdrawal, DummyWithdrawalProof)
}

func (n *Noop) prove(req domain.ProofRequest, op domain.Operation, sentinel string) (domain.ProofResult, error) {
	if err := checkRequest(req, op); err != nil {
		return domain.ProofResult{}, err
	}
	return domain.ProofResult{Proof: sentinel, PublicSignals: []string{}}, nil
}
