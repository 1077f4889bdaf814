package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/franpulido/ticketlog/internal/auth/service"
	"github.com/franpulido/ticketlog/pkg/httpx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the body for both authentication phases. Success marks
// whether this is a first-phase reply; the second phase deliberately
// reports false to tell the client the flow is past the password step.
type authResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// handleAuthenticate is phase one: password in, provisional token out, and
// a one-time code on its way out of band.
func (rt *Router) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Message: "malformed request body",
		})
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Message: "username and password are required",
		})
		return
	}

	res, err := rt.Auth.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, authResponse{
			Token:   res.Token,
			Message: "verification code sent",
			Success: true,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteJSON(w, http.StatusUnauthorized, authResponse{
			Message: "invalid username or password",
		})
	default:
		slogx.FromContext(ctx).Error("authenticate failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authResponse{
			Message: "internal error",
		})
	}
}
