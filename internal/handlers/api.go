package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"betsafe-ai/internal/middleware"
	"betsafe-ai/internal/models"
	"betsafe-ai/internal/services"
)

// APIHandler exposes the same flow as the page for JSON clients.
type APIHandler struct {
	sessions   sessionStore
	dispatcher dispatcher
}

func NewAPIHandler(sessions sessionStore, d dispatcher) *APIHandler {
	return &APIHandler{sessions: sessions, dispatcher: d}
}

func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.State(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, models.SessionStatus{State: state})
}

func (h *APIHandler) SetCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "api_key is required", r))
		return
	}

	if err := h.sessions.SetCredential(middleware.GetSessionID(r.Context()), key); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearCredential(middleware.GetSessionID(r.Context())); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	mode, text, err := runQuery(r.Context(), h.sessions, h.dispatcher, middleware.GetSessionID(r.Context()), req.Focus, req.Query)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.QueryResponse{Text: text, Focus: mode})
}

// Arbitrage is pure arithmetic; it needs no credential and makes no remote call.
func (h *APIHandler) Arbitrage(w http.ResponseWriter, r *http.Request) {
	var req models.ArbitrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := services.CalculateArbitrage(req.Investment, req.Odds)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
