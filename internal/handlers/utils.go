package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok {
		return types.User{}, errors.New("no authenticated user in context")
	}
	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps service error kinds onto HTTP statuses. Auth
// failures carry the bearer challenge; anything unclassified is reported
// as an opaque internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeError(w, http.StatusUnprocessableEntity, apperr.MessageOf(err))
	case apperr.KindAuth:
		w.Header().Set("WWW-Authenticate", "bearer")
		writeError(w, http.StatusUnauthorized, apperr.MessageOf(err))
	case apperr.KindConflict:
		writeError(w, http.StatusConflict, apperr.MessageOf(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
