package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/pkg/httpx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

type userInfoResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// handleUserInfo returns the account behind the full-scope bearer token.
func (rt *Router) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := httpx.UserIDFromContext(ctx)
	u, err := rt.Users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account.
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		slogx.FromContext(ctx).Error("user lookup failed", "user_id", id, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	})
}
