// ==============================================================================
// SHIELDED SWAP ENGINE - internal/swap/engine.go
// ==============================================================================
// Package swap prices swaps against a transparent aggregator and settles the
// input leg as a shielded note.
package swap

import (
	"context"
	"math/big"

	"umbra/internal/commitment"
	"umbra/internal/prover"
	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
	"umbra/pkg/validator"
)

// PrivacyFeeDivisor sets the privacy fee at 0.1% of the quoted output.
const PrivacyFeeDivisor = 1000

const (
	priceImpactWarnPct  = 2.0
	priceImpactBlockPct = 5.0
	basisPoints         = 10000
)

type Engine struct {
	quotes          QuoteSource
	prover          prover.Gateway
	commitments     *commitment.Engine
	relayerFee      int64
	defaultSlippage int
	logger          logger.Logger
}

func NewEngine(quotes QuoteSource, gateway prover.Gateway, commitments *commitment.Engine, cfg config.SwapConfig, log logger.Logger) *Engine {
	if commitments == nil {
		commitments = commitment.NewEngine()
	}
	slippage := cfg.DefaultSlippageBps
	if slippage == 0 {
		slippage = 50
	}
	return &Engine{
		quotes:          quotes,
		prover:          gateway,
		commitments:     commitments,
		relayerFee:      cfg.RelayerFeeLamports,
		defaultSlippage: slippage,
		logger:          log,
	}
}

// PrivacyFee is outAmount / 1000, rounded down.
func (e *Engine) PrivacyFee(outAmount *big.Int) *big.Int {
	if outAmount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Quo(outAmount, big.NewInt(PrivacyFeeDivisor))
}

// GetShieldedQuote returns the aggregator quote with the privacy fee taken
// out of OutAmount.
func (e *Engine) GetShieldedQuote(ctx context.Context, inputMint, outputMint string, amount *big.Int, slippageBps int) (*domain.SwapQuote, error) {
	quote, err := e.quotes.GetQuote(ctx, inputMint, outputMint, amount, e.slippage(slippageBps))
	if err != nil {
		return nil, err
	}
	shielded := *quote
	shielded.OutAmount = new(big.Int).Sub(quote.OutAmount, e.PrivacyFee(quote.OutAmount))
	return &shielded, nil
}

// ExecuteShieldedSwap quotes the swap, commits to the input leg and proves
// it. The returned OutputAmount is the aggregator's quoted output; the
// privacy fee is reported separately.
func (e *Engine) ExecuteShieldedSwap(ctx context.Context, params domain.ShieldedSwapParams) (*domain.ShieldedSwapResult, error) {
	if !validator.IsValidMint(params.InputMint) {
		return nil, errors.New(errors.CodeInvalidAddress, "invalid input mint")
	}
	if !validator.IsValidMint(params.OutputMint) {
		return nil, errors.New(errors.CodeInvalidAddress, "invalid output mint")
	}
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	minOutput := params.MinOutput
	if minOutput == nil {
		minOutput = big.NewInt(0)
	}

	quote, err := e.quotes.GetQuote(ctx, params.InputMint, params.OutputMint, params.Amount, e.slippage(params.SlippageBps))
	if err != nil {
		return nil, err
	}

	if quote.PriceImpactPct > priceImpactBlockPct {
		return nil, errors.Newf(errors.CodePriceImpactTooHigh, "price impact %.2f%% exceeds maximum allowed %.1f%%", quote.PriceImpactPct, priceImpactBlockPct)
	}
	if quote.PriceImpactPct > priceImpactWarnPct {
		e.logger.Warn("High price impact", map[string]interface{}{
			"price_impact_pct": quote.PriceImpactPct,
			"input_mint":       params.InputMint,
			"output_mint":      params.OutputMint,
		})
	}

	if quote.OutAmount.Cmp(minOutput) < 0 {
		return nil, errors.Newf(errors.CodeInsufficientOutput, "output amount %s is less than minimum %s", quote.OutAmount, minOutput)
	}

	note, err := e.commitments.Commit(params.Amount, params.InputMint)
	if err != nil {
		return nil, err
	}
	nullifier := e.commitments.NullifierOf(note.Commitment)

	proof, err := e.prover.ProveTransfer(ctx, domain.ProofRequest{
		Operation:    domain.OperationTransfer,
		Counterparty: params.InputMint,
		Amount:       params.Amount,
		AssetMint:    params.InputMint,
		FeeLevel:     domain.FeeLevelMedium,
		Salt:         note.SaltHex(),
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Shielded swap prepared", map[string]interface{}{
		"input_mint":  params.InputMint,
		"output_mint": params.OutputMint,
		"commitment":  note.Commitment,
	})

	return &domain.ShieldedSwapResult{
		InputCommitment: note.Commitment,
		Nullifier:       nullifier,
		Quote:           *quote,
		Proof:           proof,
		OutputAmount:    new(big.Int).Set(quote.OutAmount),
		PrivacyFee:      e.PrivacyFee(quote.OutAmount),
	}, nil
}

// EstimateTotalFees approximates the swap fee as in minus out, which only
// makes sense for mints of equal decimals.
func (e *Engine) EstimateTotalFees(ctx context.Context, inputMint, outputMint string, amount *big.Int) (*domain.SwapFees, error) {
	quote, err := e.quotes.GetQuote(ctx, inputMint, outputMint, amount, e.defaultSlippage)
	if err != nil {
		return nil, err
	}
	fees := &domain.SwapFees{
		SwapFee:    new(big.Int).Sub(quote.InAmount, quote.OutAmount),
		PrivacyFee: e.PrivacyFee(quote.OutAmount),
		RelayerFee: big.NewInt(e.relayerFee),
	}
	fees.Total = new(big.Int).Add(fees.SwapFee, fees.PrivacyFee)
	fees.Total.Add(fees.Total, fees.RelayerFee)
	return fees, nil
}

// EstimateShieldedOutput is the shielded quote's output at default slippage.
func (e *Engine) EstimateShieldedOutput(ctx context.Context, inputMint, outputMint string, amount *big.Int) (*big.Int, error) {
	quote, err := e.GetShieldedQuote(ctx, inputMint, outputMint, amount, e.defaultSlippage)
	if err != nil {
		return nil, err
	}
	return quote.OutAmount, nil
}

// IsShieldedSwapAvailable reports whether both mints are tradable. A failed
// token list lookup counts as unavailable.
func (e *Engine) IsShieldedSwapAvailable(ctx context.Context, inputMint, outputMint string) bool {
	tokens, err := e.quotes.SupportedTokens(ctx)
	if err != nil {
		e.logger.Warn("Supported token lookup failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	var haveIn, haveOut bool
	for _, t := range tokens {
		if t == inputMint {
			haveIn = true
		}
		if t == outputMint {
			haveOut = true
		}
	}
	return haveIn && haveOut
}

// ValidateShieldedSwapParams applies the transparent checks plus a positive
// minimum output.
func (e *Engine) ValidateShieldedSwapParams(params domain.ShieldedSwapParams) error {
	if err := ValidateSwapParams(params.InputMint, params.OutputMint, params.Amount, e.slippage(params.SlippageBps)); err != nil {
		return err
	}
	if params.MinOutput == nil || params.MinOutput.Sign() <= 0 {
		return errors.ErrInvalidMinOutput
	}
	return nil
}

// CalculateMinOutput is outAmount * (10000 - slippageBps) / 10000, with
// slippageBps clamped to [0, 10000].
func (e *Engine) CalculateMinOutput(outAmount *big.Int, slippageBps int) *big.Int {
	return CalculateMinOutput(outAmount, slippageBps)
}

func CalculateMinOutput(outAmount *big.Int, slippageBps int) *big.Int {
	if outAmount == nil {
		return big.NewInt(0)
	}
	if slippageBps < 0 {
		slippageBps = 0
	}
	if slippageBps > basisPoints {
		slippageBps = basisPoints
	}
	n := new(big.Int).Mul(outAmount, big.NewInt(int64(basisPoints-slippageBps)))
	return n.Quo(n, big.NewInt(basisPoints))
}

func (e *Engine) slippage(bps int) int {
	if bps == 0 {
		return e.defaultSlippage
	}
	return bps
}
