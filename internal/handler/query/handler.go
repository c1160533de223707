// Package query exposes the question-answering endpoint.
package query

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kartavya/ragchat/internal/fault"
	"github.com/kartavya/ragchat/internal/model/rag"
	"github.com/kartavya/ragchat/pkg/utils"
)

// Answerer runs the query pipeline.
type Answerer interface {
	Answer(ctx context.Context, req rag.QueryRequest) (rag.QueryResponse, error)
}

// Handler is the HTTP adapter for the orchestrator.
type Handler struct {
	orchestrator Answerer
}

// New creates the query handler.
func New(orchestrator Answerer) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// RegisterRoutes mounts the query endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/query", h.handleQuery)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req rag.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.orchestrator.Answer(r.Context(), req)
	if err == nil {
		utils.RespondJSON(w, http.StatusOK, resp)
		return
	}

	switch fault.KindOf(err) {
	case fault.InvalidRequest:
		utils.RespondError(w, http.StatusBadRequest, "Both session_id and query are required")
	case fault.NoResults:
		utils.RespondMessage(w, http.StatusNotFound, "No relevant results found.")
	case fault.SessionNotFound:
		// The answer was computed before persistence failed; hand it back
		// alongside the error so the caller keeps the generated value.
		utils.RespondJSON(w, http.StatusNotFound, struct {
			rag.QueryResponse
			Error string `json:"error"`
		}{resp, "session not found; answer was not saved to history"})
	case fault.StoreUnavailable:
		utils.RespondJSON(w, http.StatusOK, struct {
			rag.QueryResponse
			Warning string `json:"warning"`
		}{resp, "answer was not saved to history"})
	case fault.RetrievalUnavailable:
		utils.RespondError(w, http.StatusBadGateway, "retrieval backend unavailable")
	case fault.GenerationUnavailable:
		utils.RespondError(w, http.StatusBadGateway, "generation backend unavailable")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "failed to answer query")
	}
}
