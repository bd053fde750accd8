package domain

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
)

// NativeMint is the asset identifier used when no token mint is given.
const NativeMint = "So11111111111111111111111111111111111111112"

// FeeLevel represents the priority tier requested for a transaction
type FeeLevel string

const (
	FeeLevelLow    FeeLevel = "low"
	FeeLevelMedium FeeLevel = "medium"
	FeeLevelHigh   FeeLevel = "high"
)

// OrDefault returns the level, or medium when unset.
func (f FeeLevel) OrDefault() FeeLevel {
	if f == "" {
		return FeeLevelMedium
	}
	return f
}

func (f FeeLevel) Valid() bool {
	switch f {
	case FeeLevelLow, FeeLevelMedium, FeeLevelHigh:
		return true
	}
	return false
}

// ParseFeeLevel accepts any case; the empty string maps to medium.
func ParseFeeLevel(s string) (FeeLevel, error) {
	lvl := FeeLevel(strings.ToLower(strings.TrimSpace(s))).OrDefault()
	if !lvl.Valid() {
		return "", errors.New("fee level must be low, medium or high")
	}
	return lvl, nil
}

// Operation names the shielded action a proof is generated for
type Operation string

const (
	OperationTransfer   Operation = "shielded_transfer"
	OperationDeposit    Operation = "shielded_deposit"
	OperationWithdrawal Operation = "shielded_withdrawal"
)

// Tag returns the small integer identifying the operation inside proofs.
func (o Operation) Tag() int {
	switch o {
	case OperationTransfer:
		return 0
	case OperationDeposit:
		return 1
	case OperationWithdrawal:
		return 2
	}
	return -1
}

func (o Operation) Valid() bool {
	return o.Tag() >= 0
}

// ShieldedNote is a private record of value
type ShieldedNote struct {
	Commitment string   `json:"commitment"`
	Nullifier  string   `json:"nullifier,omitempty"`
	Value      *big.Int `json:"value"`
	AssetMint  string   `json:"assetMint,omitempty"`
	Memo       string   `json:"memo,omitempty"`
}

// ProofRequest describes one transfer, deposit or withdrawal to prove.
// Counterparty is the recipient for transfers and withdrawals and the
// source for deposits.
type ProofRequest struct {
	Operation    Operation `json:"operation"`
	Counterparty string    `json:"counterparty"`
	Amount       *big.Int  `json:"amount"`
	AssetMint    string    `json:"assetMint,omitempty"`
	FeeLevel     FeeLevel  `json:"feeLevel,omitempty"`
	Memo         string    `json:"memo,omitempty"`
	// Salt optionally pins the commitment randomness (hex). When empty the
	// prover draws a fresh one.
	Salt string `json:"salt,omitempty"`
}

// ProofResult is the opaque proof plus its public signals
type ProofResult struct {
	Proof         string   `json:"proof"`
	PublicSignals []string `json:"publicSignals"`
}

// MarshalJSON keeps publicSignals an array even when empty.
func (p ProofResult) MarshalJSON() ([]byte, error) {
	type alias ProofResult
	if p.PublicSignals == nil {
		p.PublicSignals = []string{}
	}
	return json.Marshal(alias(p))
}

// TransferParams are the caller-facing inputs of a shielded transfer.
type TransferParams struct {
	RecipientAddress string
	Amount           *big.Int
	AssetMint        string
	FeeLevel         FeeLevel
	Memo             string
	// FeePayer defaults to the recipient when empty.
	FeePayer string
	// InputCommitment is the note being spent. Its nullifier is recorded
	// once the transaction is built.
	InputCommitment string
}

type DepositParams struct {
	SourceAddress string
	Amount        *big.Int
	AssetMint     string
	FeeLevel      FeeLevel
	Memo          string
	FeePayer      string
}

type WithdrawalParams struct {
	RecipientAddress string
	Amount           *big.Int
	AssetMint        string
	FeeLevel         FeeLevel
	Memo             string
	FeePayer         string
	InputCommitment  string
}

// ProofRequest converts transfer params into the prover's input.
func (p TransferParams) ProofRequest() ProofRequest {
	return ProofRequest{
		Operation:    OperationTransfer,
		Counterparty: p.RecipientAddress,
		Amount:       p.Amount,
		AssetMint:    p.AssetMint,
		FeeLevel:     p.FeeLevel.OrDefault(),
		Memo:         p.Memo,
	}
}

func (p DepositParams) ProofRequest() ProofRequest {
	return ProofRequest{
		Operation:    OperationDeposit,
		Counterparty: p.SourceAddress,
		Amount:       p.Amount,
		AssetMint:    p.AssetMint,
		FeeLevel:     p.FeeLevel.OrDefault(),
		Memo:         p.Memo,
	}
}

func (p WithdrawalParams) ProofRequest() ProofRequest {
	return ProofRequest{
		Operation:    OperationWithdrawal,
		Counterparty: p.RecipientAddress,
		Amount:       p.Amount,
		AssetMint:    p.AssetMint,
		FeeLevel:     p.FeeLevel.OrDefault(),
		Memo:         p.Memo,
	}
}
