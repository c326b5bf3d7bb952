package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophaccount/internal/common"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// User-facing messages.
const (
	msgInternal       = "Something went wrong, please try again later."
	msgLoginFailed    = "Login Unsuccessful. Please check username and password"
	msgUnauthorized   = "Please log in to access this page."
	msgInvalidToken   = "That is an invalid or expired token"
	msgUsernameTaken  = "That username is taken. Please choose a different one."
	msgEmailTaken     = "That email is taken. Please choose a different one."
	msgResetEmailSent = "An email has been sent with instructions to reset your password."
	msgTooMany        = "Too many attempts. Please try again later."
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors to HTTP responses. Details of
// token and store failures are logged, never shown.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, common.ErrDuplicateUsername):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:  msgUsernameTaken,
			Fields: map[string]string{"username": msgUsernameTaken},
		})
	case errors.Is(err, common.ErrDuplicateEmail):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:  msgEmailTaken,
			Fields: map[string]string{"email": msgEmailTaken},
		})
	case errors.Is(err, common.ErrConflict):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorUnauthorized):
		respondError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		h.log.Info(r.Context(), "reset token rejected", "error", err)
		respondError(w, http.StatusBadRequest, msgInvalidToken)
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		h.log.Error(r.Context(), "request failed", "route", routePattern(r), "error", err)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}
