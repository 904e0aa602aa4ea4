package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sparkmeet/sparkmeet-api/internal/application/profile"
	"github.com/sparkmeet/sparkmeet-api/internal/pkg/validate"
	"github.com/sparkmeet/sparkmeet-api/internal/transport/http/middleware"
)

// maxAvatarBytes caps avatar uploads at 8 MiB.
const maxAvatarBytes = 8 << 20

// ProfileHandler handles profile completion and avatar upload.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Save stores the caller's profile fields.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req profile.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Save(r.Context(), u.UserID, req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "profile saved"})
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Get(r.Context(), u.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UploadAvatar accepts a multipart "headPhoto" image, runs face detection,
// and stores it as the caller's avatar.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("headPhoto")
	if err != nil {
		writeError(w, http.StatusBadRequest, "headPhoto is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(image) > maxAvatarBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	url, err := h.svc.UpdateAvatar(r.Context(), u.UserID, header.Filename, image)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvatarEnvelope{Avatar: url})
}
