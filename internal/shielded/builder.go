// ==============================================================================
// SHIELDED TRANSACTION BUILDER - internal/shielded/builder.go
// ==============================================================================
// Package shielded turns transfer, deposit and withdrawal requests into
// unsigned transactions carrying a proof. Signing and submission belong to
// the caller.
package shielded

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"umbra/internal/commitment"
	"umbra/internal/network"
	"umbra/internal/prover"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
	"umbra/pkg/validator"
)

// Built is the result of a build call. The transaction is unsigned and its
// blockhash is zero; set it before signing.
type Built struct {
	Transaction *solana.Transaction
	Payload     Payload
	Proof       domain.ProofResult
	Commitment  string
	Nullifier   string
}

// Builder holds no state between calls beyond its collaborators.
type Builder struct {
	node   network.Node
	prover prover.Gateway
	engine *commitment.Engine
	logger logger.Logger
}

func NewBuilder(node network.Node, gateway prover.Gateway, engine *commitment.Engine, log logger.Logger) *Builder {
	if engine == nil {
		engine = commitment.NewEngine()
	}
	return &Builder{
		node:   node,
		prover: gateway,
		engine: engine,
		logger: log,
	}
}

func (b *Builder) BuildTransfer(ctx context.Context, params domain.TransferParams) (*Built, error) {
	return b.build(ctx, params.ProofRequest(), params.FeePayer)
}

func (b *Builder) BuildDeposit(ctx context.Context, params domain.DepositParams) (*Built, error) {
	return b.build(ctx, params.ProofRequest(), params.FeePayer)
}

func (b *Builder) BuildWithdrawal(ctx context.Context, params domain.WithdrawalParams) (*Built, error) {
	return b.build(ctx, params.ProofRequest(), params.FeePayer)
}

func (b *Builder) build(ctx context.Context, req domain.ProofRequest, feePayer string) (*Built, error) {
	if !validator.IsValidAddress(req.Counterparty) {
		return nil, errors.Newf(errors.CodeInvalidAddress, "invalid %s address", counterpartyRole(req.Operation))
	}
	if req.AssetMint != "" && !validator.IsValidMint(req.AssetMint) {
		return nil, errors.New(errors.CodeInvalidAddress, "invalid asset mint")
	}
	req.FeeLevel = req.FeeLevel.OrDefault()
	if !req.FeeLevel.Valid() {
		return nil, errors.Newf(errors.CodeInvalidFeeLevel, "unknown fee level %q", req.FeeLevel)
	}
	if feePayer == "" {
		feePayer = req.Counterparty
	}
	payer, err := solana.PublicKeyFromBase58(feePayer)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidAddress, "invalid fee payer address")
	}

	note, err := b.engine.Commit(req.Amount, req.AssetMint)
	if err != nil {
		return nil, err
	}
	req.Salt = note.SaltHex()

	proof, err := prover.Prove(ctx, b.prover, req)
	if err != nil {
		b.logger.Error("Proof generation failed", map[string]interface{}{
			"operation": string(req.Operation),
			"error":     err.Error(),
		})
		return nil, err
	}

	payload := newPayload(req, proof.Proof)
	data, err := payload.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "encode shielded payload")
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(MemoProgramID, solana.AccountMetaSlice{}, data)},
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "assemble shielded transaction")
	}

	b.logger.Debug("Shielded transaction built", map[string]interface{}{
		"operation":  string(req.Operation),
		"commitment": note.Commitment,
		"fee_level":  string(payload.FeeLevel),
	})

	return &Built{
		Transaction: tx,
		Payload:     payload,
		Proof:       proof,
		Commitment:  note.Commitment,
		Nullifier:   b.engine.NullifierOf(note.Commitment),
	}, nil
}

// Simulate dry-runs tx. Any failure, including an unreachable node, is
// reported as false.
func (b *Builder) Simulate(ctx context.Context, tx *solana.Transaction) bool {
	if b.node == nil || tx == nil {
		return false
	}
	res, err := b.node.SimulateTransaction(ctx, tx)
	if err != nil {
		b.logger.Warn("Simulation unavailable", map[string]interface{}{"error": err.Error()})
		return false
	}
	if res.Failed() {
		b.logger.Info("Simulation rejected transaction", map[string]interface{}{
			"error": res.Err,
			"logs":  res.Logs,
		})
		return false
	}
	return true
}

func counterpartyRole(op domain.Operation) string {
	if op == domain.OperationDeposit {
		return "source"
	}
	return "recipient"
}
