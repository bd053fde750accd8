// Package network is the thin boundary to a ledger node. Only simulation,
// blockhash and fee lookups are needed by the shielded builder.
package network

import (
	"context"
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"umbra/pkg/config"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

// SimulationResult is the outcome of a dry run. Err is the node's error
// value when the transaction would fail.
type SimulationResult struct {
	Err  interface{}
	Logs []string
}

// Failed reports whether the simulated transaction would fail.
func (r *SimulationResult) Failed() bool {
	return r.Err != nil
}

type Node interface {
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	// FeeForMessage returns the lamports the network charges for msg.
	FeeForMessage(ctx context.Context, msg *solana.Message) (uint64, error)
}

// RPCNode talks JSON-RPC to a single endpoint.
type RPCNode struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	logger     logger.Logger
}

func NewRPCNode(cfg config.NetworkConfig, log logger.Logger) *RPCNode {
	return &RPCNode{
		client:     rpc.New(cfg.RPCURL),
		commitment: rpc.CommitmentType(cfg.Commitment),
		logger:     log,
	}
}

// SimulateTransaction runs tx without signature checks and with the
// node's recent blockhash, so unsigned builder output can be simulated.
func (n *RPCNode) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	out, err := n.client.SimulateTransactionWithOpts(ctx, withPlaceholderSignatures(tx), &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             n.commitment,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		n.logger.Warn("Simulation request failed", map[string]interface{}{"error": err.Error()})
		return nil, errors.WithCause(errors.CodeNetworkError, "simulate transaction", err)
	}
	if out == nil || out.Value == nil {
		return nil, errors.New(errors.CodeNetworkError, "empty simulation response")
	}
	return &SimulationResult{Err: out.Value.Err, Logs: out.Value.Logs}, nil
}

func (n *RPCNode) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := n.client.GetLatestBlockhash(ctx, n.commitment)
	if err != nil {
		return solana.Hash{}, errors.WithCause(errors.CodeNetworkError, "get latest blockhash", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, errors.New(errors.CodeNetworkError, "empty blockhash response")
	}
	return out.Value.Blockhash, nil
}

func (n *RPCNode) FeeForMessage(ctx context.Context, msg *solana.Message) (uint64, error) {
	raw, err := msg.MarshalBinary()
	if err != nil {
		return 0, errors.WithCause(errors.CodeNetworkError, "encode message", err)
	}
	out, err := n.client.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(raw), n.commitment)
	if err != nil {
		return 0, errors.WithCause(errors.CodeNetworkError, "get fee for message", err)
	}
	if out == nil || out.Value == nil {
		// the node could not price the message, usually a stale blockhash
		return 0, errors.New(errors.CodeNetworkError, "fee unavailable for message")
	}
	return *out.Value, nil
}

// withPlaceholderSignatures returns tx with zero signatures filling every
// required slot; the wire encoding refuses a transaction without them.
func withPlaceholderSignatures(tx *solana.Transaction) *solana.Transaction {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) == required {
		return tx
	}
	cp := *tx
	cp.Signatures = make([]solana.Signature, required)
	copy(cp.Signatures, tx.Signatures)
	return &cp
}
