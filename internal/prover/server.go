package prover

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

// Handler exposes a Gateway over HTTP for Remote clients.
type Handler struct {
	gateway Gateway
	logger  logger.Logger
}

// NewHandler returns a router with the prove and health routes mounted.
// Callers may add further routes (metrics) to it.
func NewHandler(g Gateway, log logger.Logger) *mux.Router {
	h := &Handler{gateway: g, logger: log}
	r := mux.NewRouter()
	r.HandleFunc("/v1/prove/{operation}", h.Prove).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return r
}

// Prove decodes a ProofRequest and answers with the ProofResult.
func (h *Handler) Prove(w http.ResponseWriter, r *http.Request) {
	op, ok := operationForRoute(mux.Vars(r)["operation"])
	if !ok {
		respondError(w, http.StatusNotFound, "", "unknown operation")
		return
	}

	var req domain.ProofRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "", "Request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "", "Invalid request body")
		return
	}
	if req.Operation != "" && req.Operation != op {
		respondError(w, http.StatusBadRequest, "", "operation does not match route")
		return
	}
	req.Operation = op

	result, err := Prove(r.Context(), h.gateway, req)
	if err != nil {
		h.logger.Warn("Proof request failed", map[string]interface{}{
			"operation": string(op),
			"error":     err.Error(),
		})
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.CodeProofGenerationFailed
		}
		var coded *errors.Error
		msg := "proof generation failed"
		if errors.As(err, &coded) {
			msg = coded.Message
		}
		respondError(w, http.StatusUnprocessableEntity, string(code), msg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Error: message})
}
