package http

import (
	"net/http"

	"github.com/franpulido/ticketlog/pkg/httpx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

func (rt *Router) handleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz pings the store so a wedged database takes the instance out
// of rotation.
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := rt.Store.Ping(ctx); err != nil {
		slogx.FromContext(ctx).Warn("readiness check failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
