package prover

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

func transferRequest(amount int64) domain.ProofRequest {
	return domain.ProofRequest{
		Operation:    domain.OperationTransfer,
		Counterparty: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Amount:       big.NewInt(amount),
		FeeLevel:     domain.FeeLevelMedium,
	}
}

func TestNoop_ReturnsSentinels(t *testing.T) {
	ctx := context.Background()
	p := NewNoop()

	res, err := p.ProveTransfer(ctx, transferRequest(10))
	require.NoError(t, err)
	assert.Equal(t, DummyTransferProof, res.Proof)
	assert.NotNil(t, res.PublicSignals)
	assert.Empty(t, res.PublicSignals)

	dep := transferRequest(10)
	dep.Operation = domain.OperationDeposit
	res, err = p.ProveDeposit(ctx, dep)
	require.NoError(t, err)
	assert.Equal(t, DummyDepositProof, res.Proof)

	wd := transferRequest(10)
	wd.Operation = ""
	res, err = p.ProveWithdrawal(ctx, wd)
	require.NoError(t, err)
	assert.Equal(t, DummyWithdrawalProof, res.Proof)
}

func TestNoop_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	p := NewNoop()

	_, err := p.ProveTransfer(ctx, transferRequest(0))
	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)

	_, err = p.ProveTransfer(ctx, domain.ProofRequest{Operation: domain.OperationTransfer})
	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)

	_, err = p.ProveDeposit(ctx, transferRequest(5))
	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
}

func TestProve_Dispatch(t *testing.T) {
	ctx := context.Background()
	p := NewNoop()

	req := transferRequest(3)
	req.Operation = domain.OperationWithdrawal
	res, err := Prove(ctx, p, req)
	require.NoError(t, err)
	assert.Equal(t, DummyWithdrawalProof, res.Proof)

	req.Operation = "shielded_mint"
	_, err = Prove(ctx, p, req)
	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
}

func TestNew_SelectsBackend(t *testing.T) {
	log := logger.NewNop()

	g, err := New(config.ProverConfig{Backend: BackendNoop}, log)
	require.NoError(t, err)
	assert.IsType(t, &Noop{}, g)

	g, err = New(config.ProverConfig{Backend: BackendRemote, URL: "http://prover.internal"}, log)
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, g)

	_, err = New(config.ProverConfig{Backend: "plonk"}, log)
	assert.Error(t, err)
}

func TestFailed_HidesCauseMessage(t *testing.T) {
	err := failed(domain.OperationDeposit, assert.AnError)

	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
	assert.ErrorIs(t, err, assert.AnError)

	var coded *errors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, "could not prove shielded_deposit", coded.Message)
}
