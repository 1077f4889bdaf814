package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	authhttp "github.com/franpulido/ticketlog/internal/auth/http"
	"github.com/franpulido/ticketlog/internal/auth/service"
	"github.com/franpulido/ticketlog/internal/auth/store/drivers/sqlite"
	"github.com/franpulido/ticketlog/pkg/cryptox"
	"github.com/franpulido/ticketlog/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type codeRecorder struct {
	mu   sync.Mutex
	last string
}

func (c *codeRecorder) Send(_ context.Context, _, _, body string) error {
	line, _, _ := strings.Cut(body, "\n")
	_, code, _ := strings.Cut(line, ":")
	c.mu.Lock()
	c.last = strings.TrimSpace(code)
	c.mu.Unlock()
	return nil
}

func (c *codeRecorder) lastCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type testServer struct {
	Router *authhttp.Router
	Store  *sqlite.Store
	Codec  *jwtx.Codec
	Codes  *codeRecorder

	reqSeq int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewEphemeralCodec("ticketlog-test")
	require.NoError(t, err)

	codes := &codeRecorder{}
	auth := &service.AuthService{Store: st, Codec: codec, Dispatcher: codes}
	users := &service.UserService{Store: st}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testServer{
		Router: authhttp.NewRouter(auth, users, codec, st, log),
		Store:  st,
		Codec:  codec,
		Codes:  codes,
	}
}

func (s *testServer) createUser(t *testing.T, username, password string, roles ...string) {
	t.Helper()
	users := &service.UserService{Store: s.Store}
	_, err := users.CreateUser(context.Background(), username, username+"@example.com", password, roles)
	require.NoError(t, err)
}

// do sends a request through the router. Each call comes from a distinct
// client IP so the per-IP rate limit never interferes with the scenario
// under test; the limit itself has a dedicated test.
func (s *testServer) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	s.reqSeq++
	req.RemoteAddr = fmt.Sprintf("198.51.100.%d:4000", s.reqSeq%250+1)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

type authResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func decodeAuth(t *testing.T, rec *httptest.ResponseRecorder) authResponse {
	t.Helper()
	var res authResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func (s *testServer) login(t *testing.T, username, password string) (token, code string) {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/authenticate", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeAuth(t, rec).Token, s.Codes.lastCode()
}

func TestAuthenticateEndpoint(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw", "user")

		rec := srv.do(http.MethodPost, "/api/v1/authenticate", "", map[string]string{
			"username": "alice",
			"password": "s3cret-pw",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		res := decodeAuth(t, rec)
		require.True(t, res.Success)
		require.NotEmpty(t, res.Token)

		claims, err := srv.Codec.Decode(res.Token)
		require.NoError(t, err)
		require.Equal(t, jwtx.ScopeProvisional, claims.Scope)
		require.Equal(t, "alice", claims.Subject)

		require.Len(t, srv.Codes.lastCode(), cryptox.CodeDigits)
	})

	t.Run("wrong password", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")

		rec := srv.do(http.MethodPost, "/api/v1/authenticate", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		res := decodeAuth(t, rec)
		require.False(t, res.Success)
		require.Empty(t, res.Token)
	})

	t.Run("unknown user matches wrong password", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")

		wrongPw := srv.do(http.MethodPost, "/api/v1/authenticate", "", map[string]string{
			"username": "alice", "password": "wrong",
		})
		unknown := srv.do(http.MethodPost, "/api/v1/authenticate", "", map[string]string{
			"username": "mallory", "password": "wrong",
		})
		require.Equal(t, wrongPw.Code, unknown.Code)
		require.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		srv := newTestServer(t)
		for name, body := range map[string]map[string]string{
			"no password": {"username": "alice"},
			"no username": {"password": "pw"},
			"empty":       {},
		} {
			t.Run(name, func(t *testing.T) {
				rec := srv.do(http.MethodPost, "/api/v1/authenticate", "", body)
				require.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/authenticate", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTwoFactorEndpoint(t *testing.T) {
	t.Run("completes the flow", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw", "user", "admin")
		token, code := srv.login(t, "alice", "s3cret-pw")

		rec := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{"code": code})
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeAuth(t, rec)
		require.False(t, res.Success)
		require.NotEmpty(t, res.Token)

		claims, err := srv.Codec.Decode(res.Token)
		require.NoError(t, err)
		require.Equal(t, jwtx.ScopeFull, claims.Scope)
		require.Equal(t, []string{"user", "admin"}, claims.Roles)
	})

	t.Run("wrong code", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")
		token, code := srv.login(t, "alice", "s3cret-pw")

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		rec := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{"code": wrong})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")
		token, _ := srv.login(t, "alice", "s3cret-pw")

		rec := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing bearer token", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodPost, "/api/v1/twofactor", "", map[string]string{"code": "123456"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage bearer token", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodPost, "/api/v1/twofactor", "not.a.token", map[string]string{"code": "123456"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("code is single use", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")
		token, code := srv.login(t, "alice", "s3cret-pw")

		first := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{"code": code})
		require.Equal(t, http.StatusOK, first.Code)

		replay := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{"code": code})
		require.Equal(t, http.StatusUnauthorized, replay.Code)
	})
}

func TestUserInfoEndpoint(t *testing.T) {
	t.Run("full token", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw", "user")
		token, code := srv.login(t, "alice", "s3cret-pw")

		rec := srv.do(http.MethodPost, "/api/v1/twofactor", token, map[string]string{"code": code})
		require.Equal(t, http.StatusOK, rec.Code)
		full := decodeAuth(t, rec).Token

		me := srv.do(http.MethodGet, "/api/v1/users/me", full, nil)
		require.Equal(t, http.StatusOK, me.Code)

		var body struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
		}
		require.NoError(t, json.NewDecoder(me.Body).Decode(&body))
		require.Equal(t, "alice", body.Username)
		require.Equal(t, []string{"user"}, body.Roles)
	})

	t.Run("provisional token is rejected", func(t *testing.T) {
		srv := newTestServer(t)
		srv.createUser(t, "alice", "s3cret-pw")
		token, _ := srv.login(t, "alice", "s3cret-pw")

		rec := srv.do(http.MethodGet, "/api/v1/users/me", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		srv := newTestServer(t)
		rec := srv.do(http.MethodGet, "/api/v1/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, srv.Store.Close())
	rec = srv.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthenticateRateLimit(t *testing.T) {
	srv := newTestServer(t)
	srv.createUser(t, "alice", "s3cret-pw")

	send := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(map[string]string{"username": "alice", "password": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/authenticate", &buf)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		srv.Router.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusUnauthorized, send().Code, "request %d", i)
	}
	rec := send()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
