package domain

import "math/big"

// RoutePlanStep is one hop of an aggregator route
type RoutePlanStep struct {
	AMMKey     string   `json:"ammKey"`
	Label      string   `json:"label,omitempty"`
	InputMint  string   `json:"inputMint"`
	OutputMint string   `json:"outputMint"`
	InAmount   *big.Int `json:"inAmount"`
	OutAmount  *big.Int `json:"outAmount"`
	FeeAmount  *big.Int `json:"feeAmount,omitempty"`
	FeeMint    string   `json:"feeMint,omitempty"`
	Percent    int      `json:"percent"`
}

// SwapQuote is a priced route from the transparent quote source
type SwapQuote struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             *big.Int        `json:"inAmount"`
	OutAmount            *big.Int        `json:"outAmount"`
	OtherAmountThreshold *big.Int        `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       float64         `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`
}

// TokenInfo describes a tradable token
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

type ShieldedSwapParams struct {
	InputMint   string
	OutputMint  string
	Amount      *big.Int
	SlippageBps int
	MinOutput   *big.Int
	// UserAddress is the payer of the input leg.
	UserAddress string
	// InputCommitment is the shielded note funding the swap.
	InputCommitment string
}

type ShieldedSwapResult struct {
	InputCommitment string      `json:"inputCommitment"`
	Nullifier       string      `json:"nullifier"`
	Quote           SwapQuote   `json:"quote"`
	Proof           ProofResult `json:"proof"`
	OutputAmount    *big.Int    `json:"outputAmount"`
	PrivacyFee      *big.Int    `json:"privacyFee"`
}

// SwapFees is the fee breakdown of a shielded swap, in output smallest units
// except RelayerFee which is lamports.
type SwapFees struct {
	SwapFee    *big.Int `json:"swapFee"`
	PrivacyFee *big.Int `json:"privacyFee"`
	RelayerFee *big.Int `json:"relayerFee"`
	Total      *big.Int `json:"total"`
}
