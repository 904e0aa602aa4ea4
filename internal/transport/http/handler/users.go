package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
	"github.com/sparkmeet/sparkmeet-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type userDirectory interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (string, error)
}

// UserHandler exposes thin pass-throughs over the user directory.
type UserHandler struct {
	directory userDirectory
}

func NewUserHandler(directory userDirectory) *UserHandler {
	return &UserHandler{directory: directory}
}

// FindUser looks up a user by id or by phone number. The id wins when both
// query parameters are present.
func (h *UserHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	var (
		u   *domain.User
		err error
	)
	switch {
	case r.URL.Query().Get("id") != "":
		u, err = h.directory.Get(r.Context(), r.URL.Query().Get("id"))
	case r.URL.Query().Get("mobile") != "":
		u, err = h.directory.GetByPhone(r.Context(), r.URL.Query().Get("mobile"))
	default:
		writeError(w, http.StatusBadRequest, "id or mobile is required")
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

// SaveUser creates a user directly with a chosen password.
func (h *UserHandler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.directory.GetByPhone(r.Context(), req.Mobile); err == nil {
		writeError(w, http.StatusConflict, "phone already registered")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpError(w, err)
		return
	}
	u := &domain.User{Phone: req.Mobile, PasswordHash: string(hash)}
	userID, err := h.directory.Create(r.Context(), u)
	if err != nil {
		httpError(w, err)
		return
	}
	u.UserID = userID
	writeJSON(w, http.StatusCreated, toSafeUser(u))
}
