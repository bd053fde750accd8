package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"umbra/pkg/domain"
	"umbra/pkg/logger"
)

// Remote calls a proving service speaking the protocol served by NewHandler:
// POST {base}/v1/prove/{transfer|deposit|withdrawal} with a JSON
// ProofRequest, answered by a JSON ProofResult.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewRemote(baseURL string, client *http.Client, log logger.Logger) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

func (r *Remote) ProveTransfer(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return r.prove(ctx, req, domain.OperationTransfer)
}

func (r *Remote) ProveDeposit(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return r.prove(ctx, req, domain.OperationDeposit)
}

func (r *Remote) ProveWithdrawal(ctx context.Context, req domain.ProofRequest) (domain.ProofResult, error) {
	return r.prove(ctx, req, domain.OperationWithdrawal)
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (r *Remote) prove(ctx context.Context, req domain.ProofRequest, op domain.Operation) (domain.ProofResult, error) {
	if err := checkRequest(req, op); err != nil {
		return domain.ProofResult{}, err
	}
	req.Operation = op

	body, err := json.Marshal(req)
	if err != nil {
		return domain.ProofResult{}, failed(op, err)
	}

	url := fmt.Sprintf("%s/v1/prove/%s", r.baseURL, routeFor(op))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.ProofResult{}, failed(op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error("Prover service unreachable", map[string]interface{}{
			"operation": string(op),
			"error":     err.Error(),
		})
		return domain.ProofResult{}, failed(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.ProofResult{}, failed(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal(data, &er)
		r.logger.Warn("Prover service rejected request", map[string]interface{}{
			"operation": string(op),
			"status":    resp.StatusCode,
			"error":     er.Error,
		})
		return domain.ProofResult{}, failed(op, fmt.Errorf("prover returned status %d", resp.StatusCode))
	}

	var result domain.ProofResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ProofResult{}, failed(op, fmt.Errorf("decode proof: %w", err))
	}
	if result.Proof == "" {
		return domain.ProofResult{}, failed(op, fmt.Errorf("prover returned an empty proof"))
	}
	if result.PublicSignals == nil {
		result.PublicSignals = []string{}
	}
	return result, nil
}

func routeFor(op domain.Operation) string {
	switch op {
	case domain.OperationTransfer:
		return "transfer"
	case domain.OperationDeposit:
		return "deposit"
	case domain.OperationWithdrawal:
		return "withdrawal"
	}
	return ""
}

func operationForRoute(route string) (domain.Operation, bool) {
	switch route {
	case "transfer":
		return domain.OperationTransfer, true
	case "deposit":
		return domain.OperationDeposit, true
	case "withdrawal":
		return domain.OperationWithdrawal, true
	}
	return "", false
}
