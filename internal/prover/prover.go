// Package prover produces zero-knowledge proofs for shielded operations.
//
// Gateway is the only type the rest of the system sees. Backends are picked
// by configuration: a no-op test double, an in-process Groth16 prover and an
// HTTP client for a remote proving service.
package prover

import (
	"context"
	"fmt"
	"net/http"

	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

type Gateway interface {
	ProveTransfer(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error)
	ProveDeposit(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error)
	ProveWithdrawal(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error)
}

const (
	BackendNoop    = "noop"
	BackendGroth16 = "groth16"
	BackendRemote  = "remote"
)

// New builds the gateway named by cfg.Backend. Groth16 key setup runs here,
// so construction can take a few seconds on first use.
func New(cfg config.ProverConfig, log logger.Logger) (Gateway, error) {
	switch cfg.Backend {
	case BackendNoop, "":
		log.Warn("Using no-op prover; proofs are placeholders", nil)
		return NewNoop(), nil
	case BackendGroth16:
		g, err := NewGroth16(cfg.KeyDir, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendRemote:
		return NewRemote(cfg.URL, &http.Client{Timeout: cfg.Timeout}, log), nil
	default:
		return nil, fmt.Errorf("unknown prover backend %q", cfg.Backend)
	}
}

// Prove dispatches on req.Operation.
func Prove(ctx context.Context, g Gateway, req domain.ProofRequest) (domain.ProofResult, error) {
	switch req.Operation {
	case domain.OperationTransfer:
		return g.ProveTransfer(ctx, req)
	case domain.OperationDeposit:
		return g.ProveDeposit(ctx, req)
	case domain.OperationWithdrawal:
		return g.ProveWithdrawal(ctx, req)
	}
	return domain.ProofResult{}, errors.Newf(errors.CodeProofGenerationFailed, "unknown operation %q", req.Operation)
}

// checkRequest is shared by every backend: no proof is produced for a
// request that names the wrong operation or a non-positive amount.
func checkRequest(req domain.ProofRequest, op domain.Operation) error {
	if req.Operation != "" && req.Operation != op {
		return errors.Newf(errors.CodeProofGenerationFailed, "request is for %s, not %s", req.Operation, op)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return errors.New(errors.CodeProofGenerationFailed, "amount must be positive")
	}
	return nil
}

// failed hides backend detail behind a generic message; the cause stays on
// the chain for logs.
func failed(op domain.Operation, cause error) error {
	if errors.CodeOf(cause) == errors.CodeProofGenerationFailed {
		return cause
	}
	return errors.WithCause(errors.CodeProofGenerationFailed, fmt.Sprintf("could not prove %s", op), cause)
}
