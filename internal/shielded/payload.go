package shielded

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

// MemoProgramID is the SPL memo program that carries shielded payloads.
var MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// ErrMalformedPayload is returned for memo data that is not a shielded payload.
var ErrMalformedPayload = stderrors.New("malformed shielded payload")

// Payload is the instruction data of a shielded operation. Transfers and
// withdrawals carry Recipient, deposits carry Source. Amount is a decimal
// string and is never parsed as a float.
type Payload struct {
	Type      domain.Operation `json:"type"`
	Recipient string           `json:"recipient,omitempty"`
	Source    string           `json:"source,omitempty"`
	Amount    string           `json:"amount"`
	AssetMint *string          `json:"assetMint"`
	FeeLevel  domain.FeeLevel  `json:"feeLevel"`
	Memo      *string          `json:"memo"`
	Proof     string           `json:"proof"`
}

func newPayload(req domain.ProofRequest, proof string) Payload {
	p := Payload{
		Type:      req.Operation,
		Amount:    req.Amount.String(),
		AssetMint: optional(req.AssetMint),
		FeeLevel:  req.FeeLevel.OrDefault(),
		Memo:      optional(req.Memo),
		Proof:     proof,
	}
	if req.Operation == domain.OperationDeposit {
		p.Source = req.Counterparty
	} else {
		p.Recipient = req.Counterparty
	}
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Counterparty returns whichever of Recipient and Source the type uses.
func (p *Payload) Counterparty() string {
	if p.Type == domain.OperationDeposit {
		return p.Source
	}
	return p.Recipient
}

// AmountInt parses Amount exactly.
func (p *Payload) AmountInt() (*big.Int, error) {
	n, ok := new(big.Int).SetString(p.Amount, 10)
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidAmount, "amount %q is not a decimal integer", p.Amount)
	}
	return n, nil
}

// Encode returns the memo bytes.
func (p *Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses memo bytes produced by Encode.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedPayload, p.Type)
	}
	if _, err := p.AmountInt(); err != nil {
		return nil, err
	}
	return &p, nil
}

// PayloadFromTransaction finds the memo instruction in tx and decodes it.
func PayloadFromTransaction(tx *solana.Transaction) (*Payload, error) {
	keys := tx.Message.AccountKeys
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(keys) {
			continue
		}
		if keys[ix.ProgramIDIndex].Equals(MemoProgramID) {
			return DecodePayload(ix.Data)
		}
	}
	return nil, fmt.Errorf("%w: no memo instruction", ErrMalformedPayload)
}
