package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

func newProverServer(t *testing.T, g Gateway) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(g, logger.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote_RoundTripThroughHandler(t *testing.T) {
	srv := newProverServer(t, NewNoop())
	remote := NewRemote(srv.URL+"/", srv.Client(), logger.NewNop())
	ctx := context.Background()

	res, err := remote.ProveTransfer(ctx, transferRequest(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, DummyTransferProof, res.Proof)
	assert.Equal(t, []string{}, res.PublicSignals)

	dep := transferRequest(7)
	dep.Operation = domain.OperationDeposit
	res, err = remote.ProveDeposit(ctx, dep)
	require.NoError(t, err)
	assert.Equal(t, DummyDepositProof, res.Proof)

	wd := transferRequest(7)
	wd.Operation = domain.OperationWithdrawal
	res, err = remote.ProveWithdrawal(ctx, wd)
	require.NoError(t, err)
	assert.Equal(t, DummyWithdrawalProof, res.Proof)
}

func TestRemote_ServerErrorIsProofFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"constraint #12 is not satisfied"}`))
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client(), logger.NewNop())
	_, err := remote.ProveTransfer(context.Background(), transferRequest(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
	assert.NotContains(t, err.Error(), "constraint #12")
}

func TestRemote_UnreachableIsProofFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	remote := NewRemote(url, nil, logger.NewNop())
	_, err := remote.ProveWithdrawal(context.Background(), domain.ProofRequest{
		Operation: domain.OperationWithdrawal,
		Amount:    transferRequest(1).Amount,
	})

	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
}

func TestRemote_EmptyProofRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"proof":"","publicSignals":[]}`))
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client(), logger.NewNop())
	_, err := remote.ProveTransfer(context.Background(), transferRequest(5))

	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
}

func TestRemote_InvalidRequestNeverLeavesProcess(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, srv.Client(), logger.NewNop())
	_, err := remote.ProveTransfer(context.Background(), transferRequest(-1))

	assert.ErrorIs(t, err, errors.ErrProofGenerationFailed)
	assert.False(t, called)
}

func TestHandler_Errors(t *testing.T) {
	srv := newProverServer(t, NewNoop())

	t.Run("unknown operation", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/v1/prove/mint", "application/json", bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/v1/prove/transfer", "application/json", http.NoBody)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/v1/prove/transfer", "application/json", bytes.NewReader([]byte(`{"amount":5,"witness":"x"}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("zero amount", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/v1/prove/deposit", "application/json", bytes.NewReader([]byte(`{"amount":0}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body errorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "PROOF_GENERATION_FAILED", body.Code)
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
