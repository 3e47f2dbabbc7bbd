package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"betsafe-ai/internal/middleware"
	"betsafe-ai/internal/models"
	"betsafe-ai/internal/services"
	"betsafe-ai/internal/session"
)

type dispatcher interface {
	Dispatch(ctx context.Context, mode models.FocusMode, userText, credential string) (string, error)
}

type sessionStore interface {
	State(id uuid.UUID) (models.SessionState, error)
	SetCredential(id uuid.UUID, credential string) error
	ClearCredential(id uuid.UUID) error
	BeginDispatch(id uuid.UUID) (string, error)
	EndDispatch(id uuid.UUID)
}

type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// validateSubmission runs the checks that need no session or remote call.
func validateSubmission(focus, query string) error {
	if _, err := models.ParseFocusMode(focus); err != nil {
		return &services.ValidationError{Fields: map[string]string{"focus": "must be 'safe' or 'value'"}}
	}
	if strings.TrimSpace(query) == "" {
		return services.ErrEmptyQuery
	}
	return nil
}

// runQuery drives one submission through the session state machine:
// Ready -> Dispatching -> Ready, whatever the outcome.
func runQuery(ctx context.Context, sessions sessionStore, d dispatcher, sessionID uuid.UUID, focus, query string) (models.FocusMode, string, error) {
	mode, err := models.ParseFocusMode(focus)
	if err != nil {
		return "", "", &services.ValidationError{Fields: map[string]string{"focus": "must be 'safe' or 'value'"}}
	}

	credential, err := sessions.BeginDispatch(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoCredential) || errors.Is(err, session.ErrNotFound) {
			return mode, "", services.ErrMissingCredential
		}
		return mode, "", err
	}
	defer sessions.EndDispatch(sessionID)

	text, err := d.Dispatch(ctx, mode, query, credential)
	return mode, text, err
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	var re *services.RemoteError

	switch {
	case errors.Is(err, services.ErrMissingCredential):
		writeJSON(w, http.StatusUnauthorized, errorResp("MISSING_CREDENTIAL", "Set your Gemini API key first", r))
	case errors.Is(err, services.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorResp("EMPTY_QUERY", "Query is required", r))
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", ve.Fields, r))
	case errors.Is(err, session.ErrDispatchInFlight):
		writeJSON(w, http.StatusConflict, errorResp("DISPATCH_IN_FLIGHT", err.Error(), r))
	case errors.As(err, &re):
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", re.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
