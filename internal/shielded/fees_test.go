package shielded

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

func TestFeeEstimator_PriorityFee(t *testing.T) {
	f := NewFeeEstimator(nil)
	assert.Equal(t, uint64(1000), f.PriorityFee(domain.FeeLevelLow))
	assert.Equal(t, uint64(5000), f.PriorityFee(domain.FeeLevelMedium))
	assert.Equal(t, uint64(10000), f.PriorityFee(domain.FeeLevelHigh))
	assert.Equal(t, uint64(5000), f.PriorityFee(""))
	assert.Equal(t, uint64(5000), f.PriorityFee("urgent"))
	assert.Len(t, f.NetworkFees(), 3)
}

func TestFeeEstimator_Shielded(t *testing.T) {
	est := NewFeeEstimator(nil).EstimateShieldedFee(domain.FeeLevelHigh)
	assert.Equal(t, uint64(10000), est.BaseFee)
	assert.Equal(t, uint64(10000), est.PriorityFee)
	assert.Equal(t, uint64(50000), est.ProofVerificationFee)
	assert.Equal(t, uint64(70000), est.TotalFee)
	assert.InDelta(t, 0.00007, est.FeeInSOL, 1e-12)
}

func TestFeeEstimator_EstimateFee(t *testing.T) {
	ctx := context.Background()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(MemoProgramID, solana.AccountMetaSlice{}, []byte("x"))},
		solana.Hash{},
		solana.TransactionPayer(solana.NewWallet().PublicKey()),
	)
	require.NoError(t, err)
	hash := solana.Hash{1}

	t.Run("node price", func(t *testing.T) {
		node := new(MockNode)
		node.On("LatestBlockhash", mock.Anything).Return(hash, nil)
		node.On("FeeForMessage", mock.Anything, mock.MatchedBy(func(m *solana.Message) bool {
			return m.RecentBlockhash == hash
		})).Return(uint64(6000), nil)

		est, err := NewFeeEstimator(node).EstimateFee(ctx, tx, domain.FeeLevelLow)
		require.NoError(t, err)
		assert.Equal(t, uint64(6000), est.BaseFee)
		assert.Equal(t, uint64(7000), est.TotalFee)
		assert.Equal(t, solana.Hash{}, tx.Message.RecentBlockhash, "caller's transaction is untouched")
	})

	t.Run("signature fallback", func(t *testing.T) {
		node := new(MockNode)
		node.On("LatestBlockhash", mock.Anything).Return(hash, nil)
		node.On("FeeForMessage", mock.Anything, mock.Anything).Return(uint64(0), errors.ErrNetwork)

		est, err := NewFeeEstimator(node).EstimateFee(ctx, tx, domain.FeeLevelMedium)
		require.NoError(t, err)
		assert.Equal(t, uint64(5000), est.BaseFee)
		assert.Equal(t, uint64(10000), est.TotalFee)
	})

	t.Run("blockhash failure", func(t *testing.T) {
		node := new(MockNode)
		node.On("LatestBlockhash", mock.Anything).Return(solana.Hash{}, errors.ErrNetwork)

		_, err := NewFeeEstimator(node).EstimateFee(ctx, tx, domain.FeeLevelMedium)
		assert.ErrorIs(t, err, errors.ErrNetwork)
	})
}
