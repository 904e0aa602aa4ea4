package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps a successful code verification.
type LoginEnvelope struct {
	IsNew bool   `json:"isNew"`
	Token string `json:"token"`
}

// AvatarEnvelope wraps a successful avatar upload.
type AvatarEnvelope struct {
	Avatar string `json:"avatar"`
}

// SafeUser is the outward representation of a user: never the password hash.
type SafeUser struct {
	ID      string    `json:"id"`
	Mobile  string    `json:"mobile"`
	Created time.Time `json:"created"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{ID: u.UserID, Mobile: u.Phone, Created: u.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP statuses. Anything
// unrecognized is a collaborator failure and surfaces as an opaque 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrCodeExpired), errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
