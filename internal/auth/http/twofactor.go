package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/franpulido/ticketlog/internal/auth/service"
	"github.com/franpulido/ticketlog/pkg/httpx"
	"github.com/franpulido/ticketlog/pkg/jwtx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

type twoFactorRequest struct {
	Code string `json:"code"`
}

// handleTwoFactor is phase two: the provisional bearer token plus the
// delivered code upgrade to a full-scope token. The raw token is re-read
// from the header because the service verifies it as part of the exchange;
// the bearer filter only established that it parses.
func (rt *Router) handleTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := httpx.BearerToken(r)
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, authResponse{
			Message: "bearer token required",
		})
		return
	}

	var req twoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Message: "malformed request body",
		})
		return
	}
	if req.Code == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Message: "code is required",
		})
		return
	}

	full, err := rt.Auth.VerifyCode(ctx, token, req.Code)
	switch {
	case err == nil:
		// Success=false here marks "not a first login"; the token carries
		// the actual authority.
		httpx.WriteJSON(w, http.StatusOK, authResponse{
			Token:   full,
			Message: "authentication complete",
		})
	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrCodeExpired),
		errors.Is(err, service.ErrTooManyAttempts):
		httpx.WriteJSON(w, http.StatusUnauthorized, authResponse{
			Message: "invalid verification code",
		})
	case errors.Is(err, jwtx.ErrExpired),
		errors.Is(err, jwtx.ErrMalformed),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrNotYetValid),
		errors.Is(err, jwtx.ErrIssuer),
		errors.Is(err, jwtx.ErrBadScope),
		errors.Is(err, service.ErrInvalidToken):
		httpx.WriteJSON(w, http.StatusUnauthorized, authResponse{
			Message: "invalid or expired token",
		})
	default:
		slogx.FromContext(ctx).Error("two-factor verification failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authResponse{
			Message: "internal error",
		})
	}
}
