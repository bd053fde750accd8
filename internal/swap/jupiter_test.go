package swap

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

const quoteBody = `{
	"inputMint": "So11111111111111111111111111111111111111112",
	"inAmount": "1000000000",
	"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"outAmount": "184467440737095516160",
	"otherAmountThreshold": "183545103533409998579",
	"swapMode": "ExactIn",
	"slippageBps": 50,
	"priceImpactPct": "0.0012",
	"routePlan": [{
		"swapInfo": {
			"ammKey": "amm",
			"label": "Whirlpool",
			"inputMint": "So11111111111111111111111111111111111111112",
			"outputMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"inAmount": "1000000000",
			"outAmount": "184467440737095516160",
			"feeAmount": "25",
			"feeMint": "So11111111111111111111111111111111111111112"
		},
		"percent": 100
	}]
}`

func TestJupiterClient_GetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/quote", r.URL.Path)
		assert.Equal(t, solMint, r.URL.Query().Get("inputMint"))
		assert.Equal(t, usdcMint, r.URL.Query().Get("outputMint"))
		assert.Equal(t, "1000000000", r.URL.Query().Get("amount"))
		assert.Equal(t, "50", r.URL.Query().Get("slippageBps"))
		_, _ = w.Write([]byte(quoteBody))
	}))
	defer srv.Close()

	c := NewJupiterClient(srv.URL+"/v6/", srv.Client(), logger.NewNop())
	q, err := c.GetQuote(context.Background(), solMint, usdcMint, big.NewInt(1000000000), 50)
	require.NoError(t, err)

	assert.Equal(t, "184467440737095516160", q.OutAmount.String())
	assert.Equal(t, "1000000000", q.InAmount.String())
	assert.Equal(t, "ExactIn", q.SwapMode)
	assert.Equal(t, 50, q.SlippageBps)
	assert.InDelta(t, 0.0012, q.PriceImpactPct, 1e-12)
	require.Len(t, q.RoutePlan, 1)
	assert.Equal(t, "Whirlpool", q.RoutePlan[0].Label)
	assert.Equal(t, "25", q.RoutePlan[0].FeeAmount.String())
}

func TestJupiterClient_ValidatesBeforeCalling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	c := NewJupiterClient(srv.URL, srv.Client(), logger.NewNop())
	ctx := context.Background()

	_, err := c.GetQuote(ctx, solMint, solMint, big.NewInt(1), 50)
	assert.ErrorIs(t, err, errors.ErrInvalidSwap)

	_, err = c.GetQuote(ctx, solMint, usdcMint, big.NewInt(1), 9)
	assert.ErrorIs(t, err, errors.ErrInvalidSlippage)

	_, err = c.GetQuote(ctx, solMint, usdcMint, big.NewInt(0), 50)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = c.GetQuote(ctx, "nope", usdcMint, big.NewInt(1), 50)
	assert.ErrorIs(t, err, errors.ErrInvalidAddress)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestJupiterClient_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewJupiterClient(srv.URL, srv.Client(), logger.NewNop()).
		GetQuote(context.Background(), solMint, usdcMint, big.NewInt(1), 50)
	assert.ErrorIs(t, err, errors.ErrSwapQuoteFailed)
}

func TestJupiterClient_MalformedAmounts(t *testing.T) {
	bodies := map[string]string{
		"garbage amounts":  `{"inAmount":"garbage","outAmount":"not-a-number"}`,
		"missing out":      `{"inAmount":"1000"}`,
		"missing in":       `{"outAmount":"1000"}`,
		"negative out":     `{"inAmount":"1000","outAmount":"-1"}`,
		"bad threshold":    `{"inAmount":"1000","outAmount":"900","otherAmountThreshold":"x"}`,
		"bad route amount": `{"inAmount":"1000","outAmount":"900","routePlan":[{"swapInfo":{"feeAmount":"1.5"},"percent":100}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			q, err := NewJupiterClient(srv.URL, srv.Client(), logger.NewNop()).
				GetQuote(context.Background(), solMint, usdcMint, big.NewInt(1000), 50)
			assert.ErrorIs(t, err, errors.ErrSwapQuoteFailed)
			assert.Nil(t, q)
		})
	}
}

func TestJupiterClient_SupportedTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens", r.URL.Path)
		_, _ = w.Write([]byte(`["` + solMint + `", {"address":"` + usdcMint + `","symbol":"USDC"}, 42]`))
	}))
	defer srv.Close()

	tokens, err := NewJupiterClient(srv.URL, srv.Client(), logger.NewNop()).SupportedTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{solMint, usdcMint}, tokens)
}

func TestJupiterClient_SupportedTokensUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewJupiterClient(url, nil, logger.NewNop()).SupportedTokens(context.Background())
	assert.ErrorIs(t, err, errors.ErrNetwork)
}
