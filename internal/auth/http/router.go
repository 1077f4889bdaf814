// Package http wires the authentication endpoints onto a net/http mux.
package http

import (
	"log/slog"
	"net/http"

	"github.com/franpulido/ticketlog/internal/auth/service"
	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/pkg/httpx"
	"github.com/franpulido/ticketlog/pkg/jwtx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

// Router owns the HTTP surface. Handlers are thin: decode the request,
// call a service, translate the error taxonomy to a status code.
type Router struct {
	mux     *http.ServeMux
	handler http.Handler

	Auth  *service.AuthService
	Users *service.UserService
	Codec *jwtx.Codec
	Store store.Store
	Log   *slog.Logger
}

func NewRouter(
	auth *service.AuthService,
	users *service.UserService,
	codec *jwtx.Codec,
	st store.Store,
	log *slog.Logger,
) *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		Auth:  auth,
		Users: users,
		Codec: codec,
		Store: st,
		Log:   log,
	}
	r.applyRoutes()
	// The request logger wraps the whole mux so every handler and service
	// call logs with the request id attached.
	r.handler = slogx.HTTPMiddleware(log)(r.mux)
	return r
}

func (rt *Router) applyRoutes() {
	bearer := httpx.AuthContextMiddleware(rt.Codec)

	// Both auth endpoints are brute-force targets and share the strict
	// per-IP budget.
	rt.mux.Handle("POST /api/v1/authenticate", httpx.Chain(
		http.HandlerFunc(rt.handleAuthenticate),
		httpx.RateLimitByIP(httpx.StrictLimit),
	))

	rt.mux.Handle("POST /api/v1/twofactor", httpx.Chain(
		http.HandlerFunc(rt.handleTwoFactor),
		bearer,
		httpx.RateLimitByIP(httpx.StrictLimit),
	))

	rt.mux.Handle("GET /api/v1/users/me", httpx.Chain(
		http.HandlerFunc(rt.handleUserInfo),
		bearer,
		httpx.RequireFullScope(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))

	rt.mux.HandleFunc("GET /livez", rt.handleLivez)
	rt.mux.HandleFunc("GET /readyz", rt.handleReadyz)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}
