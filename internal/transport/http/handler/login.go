package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sparkmeet/sparkmeet-api/internal/application/verification"
	"github.com/sparkmeet/sparkmeet-api/internal/pkg/validate"
)

// LoginHandler handles the SMS login flow: code request and verification.
type LoginHandler struct {
	svc verification.Service
}

func NewLoginHandler(svc verification.Service) *LoginHandler {
	return &LoginHandler{svc: svc}
}

// SendCode issues a one-time code to the given phone number.
func (h *LoginHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req verification.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Phone); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

// Verify exchanges a phone + code pair for a session token.
func (h *LoginHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verification.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.VerifyAndLogin(r.Context(), req.Phone, req.VerificationCode)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{IsNew: result.IsNewUser, Token: result.Token})
}
