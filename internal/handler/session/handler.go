// Package session exposes the session lifecycle endpoints.
package session

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kartavya/ragchat/internal/fault"
	"github.com/kartavya/ragchat/internal/model/chat"
	"github.com/kartavya/ragchat/pkg/utils"
)

// Store is the lifecycle surface the handler needs.
type Store interface {
	Create(ctx context.Context) (string, error)
	Fetch(ctx context.Context, id string) ([]chat.Turn, error)
	Clear(ctx context.Context, id string) (bool, error)
}

// Handler is the HTTP adapter for the session store.
type Handler struct {
	store Store
}

// New creates the session handler.
func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the session endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Get("/history", h.handleHistory)
	r.Delete("/session", h.handleClear)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.Create(r.Context())
	if err != nil {
		utils.RespondError(w, fault.Status(fault.KindOf(err)), "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	turns, err := h.store.Fetch(r.Context(), sessionID)
	if err != nil {
		if fault.KindOf(err) == fault.SessionNotFound {
			utils.RespondMessage(w, http.StatusNotFound, "No chat history found for this session.")
			return
		}
		utils.RespondError(w, http.StatusBadGateway, "failed to retrieve chat history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"history":    turns,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	existed, err := h.store.Clear(r.Context(), payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, "failed to clear session")
		return
	}
	if !existed {
		utils.RespondMessage(w, http.StatusNotFound, "Session not found or already cleared.")
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Session cleared successfully.")
}
