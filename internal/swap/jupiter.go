package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
	"umbra/pkg/validator"
)

// Slippage bounds in basis points (0.1% to 5%).
const (
	MinSlippageBps = 10
	MaxSlippageBps = 500
)

// QuoteSource is the transparent aggregator the shielded engine prices
// against.
type QuoteSource interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount *big.Int, slippageBps int) (*domain.SwapQuote, error)
	SupportedTokens(ctx context.Context) ([]string, error)
}

// ValidateSwapParams checks a transparent swap request.
func ValidateSwapParams(inputMint, outputMint string, amount *big.Int, slippageBps int) error {
	if !validator.IsValidMint(inputMint) {
		return errors.New(errors.CodeInvalidAddress, "invalid input mint")
	}
	if !validator.IsValidMint(outputMint) {
		return errors.New(errors.CodeInvalidAddress, "invalid output mint")
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.ErrInvalidAmount
	}
	if inputMint == outputMint {
		return errors.New(errors.CodeInvalidSwap, "input and output tokens must be different")
	}
	if slippageBps < MinSlippageBps || slippageBps > MaxSlippageBps {
		return errors.Newf(errors.CodeInvalidSlippage, "slippage must be between %d and %d bps", MinSlippageBps, MaxSlippageBps)
	}
	return nil
}

// JupiterClient reads quotes from a Jupiter v6 compatible quote API.
type JupiterClient struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewJupiterClient(baseURL string, client *http.Client, log logger.Logger) *JupiterClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &JupiterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

type quoteResponse struct {
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []routePlanStep `json:"routePlan"`
}

type routePlanStep struct {
	SwapInfo struct {
		AMMKey     string `json:"ammKey"`
		Label      string `json:"label"`
		InputMint  string `json:"inputMint"`
		OutputMint string `json:"outputMint"`
		InAmount   string `json:"inAmount"`
		OutAmount  string `json:"outAmount"`
		FeeAmount  string `json:"feeAmount"`
		FeeMint    string `json:"feeMint"`
	} `json:"swapInfo"`
	Percent int `json:"percent"`
}

// GetQuote validates the request before calling out, so identical mints
// and out-of-range slippage never reach the network.
func (j *JupiterClient) GetQuote(ctx context.Context, inputMint, outputMint string, amount *big.Int, slippageBps int) (*domain.SwapQuote, error) {
	if err := ValidateSwapParams(inputMint, outputMint, amount, slippageBps); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", amount.String())
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	var resp quoteResponse
	if err := j.getJSON(ctx, "/quote?"+q.Encode(), &resp); err != nil {
		j.logger.Error("Quote fetch failed", map[string]interface{}{
			"input_mint":  inputMint,
			"output_mint": outputMint,
			"error":       err.Error(),
		})
		return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "failed to fetch swap quote", err)
	}

	inAmount, err := parseAmount(resp.InAmount)
	if err != nil {
		return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "invalid amount in quote", err)
	}
	outAmount, err := parseAmount(resp.OutAmount)
	if err != nil {
		return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "invalid amount in quote", err)
	}
	threshold, err := parseOptionalAmount(resp.OtherAmountThreshold)
	if err != nil {
		return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "invalid amount in quote", err)
	}

	quote := &domain.SwapQuote{
		InputMint:            inputMint,
		OutputMint:           outputMint,
		InAmount:             inAmount,
		OutAmount:            outAmount,
		OtherAmountThreshold: threshold,
		SwapMode:             resp.SwapMode,
		SlippageBps:          slippageBps,
		RoutePlan:            []domain.RoutePlanStep{},
	}
	if quote.SwapMode == "" {
		quote.SwapMode = "ExactIn"
	}
	if resp.PriceImpactPct != "" {
		impact, err := strconv.ParseFloat(resp.PriceImpactPct, 64)
		if err != nil {
			return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "invalid price impact in quote", err)
		}
		quote.PriceImpactPct = impact
	}
	for _, step := range resp.RoutePlan {
		route, err := routeStep(step)
		if err != nil {
			return nil, errors.WithCause(errors.CodeSwapQuoteFailed, "invalid route plan in quote", err)
		}
		quote.RoutePlan = append(quote.RoutePlan, route)
	}
	return quote, nil
}

// SupportedTokens lists tradable mint addresses. The endpoint may return
// plain addresses or token objects.
func (j *JupiterClient) SupportedTokens(ctx context.Context) ([]string, error) {
	var raw []json.RawMessage
	if err := j.getJSON(ctx, "/tokens", &raw); err != nil {
		return nil, errors.WithCause(errors.CodeNetworkError, "failed to fetch supported tokens", err)
	}

	tokens := make([]string, 0, len(raw))
	for _, item := range raw {
		var addr string
		if err := json.Unmarshal(item, &addr); err == nil {
			tokens = append(tokens, addr)
			continue
		}
		var info domain.TokenInfo
		if err := json.Unmarshal(item, &info); err == nil && info.Address != "" {
			tokens = append(tokens, info.Address)
		}
	}
	return tokens, nil
}

func (j *JupiterClient) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(dest)
}

func routeStep(step routePlanStep) (domain.RoutePlanStep, error) {
	info := step.SwapInfo
	in, err := parseOptionalAmount(info.InAmount)
	if err != nil {
		return domain.RoutePlanStep{}, err
	}
	out, err := parseOptionalAmount(info.OutAmount)
	if err != nil {
		return domain.RoutePlanStep{}, err
	}
	fee, err := parseOptionalAmount(info.FeeAmount)
	if err != nil {
		return domain.RoutePlanStep{}, err
	}
	return domain.RoutePlanStep{
		AMMKey:     info.AMMKey,
		Label:      info.Label,
		InputMint:  info.InputMint,
		OutputMint: info.OutputMint,
		InAmount:   in,
		OutAmount:  out,
		FeeAmount:  fee,
		FeeMint:    info.FeeMint,
		Percent:    step.Percent,
	}, nil
}

// parseAmount reads a non-negative decimal integer.
func parseAmount(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a decimal integer", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	return n, nil
}

// parseOptionalAmount is parseAmount with the empty string read as zero.
func parseOptionalAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	return parseAmount(s)
}
