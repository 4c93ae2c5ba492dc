package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/infra/ratelimit"
	"github.com/xavierca1/kiwipay-leads/internal/infra/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// userStore devolve o usuário pelo username, como o repositório.
type userStore map[string]*entity.User

func (s userStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	u, ok := s[username]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

type failingUsers struct{}

func (failingUsers) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, errors.New("connection refused")
}

func issueFor(t *testing.T, tokens *security.TokenService, username string, role entity.Role) string {
	t.Helper()
	token, _, err := tokens.Issue(&entity.User{Username: username, Role: role})
	require.NoError(t, err)
	return token
}

// issue emite um token para um usuário ativo cujo papel no banco é o mesmo do token.
func issue(t *testing.T, tokens *security.TokenService, role entity.Role) string {
	t.Helper()
	return issueFor(t, tokens, "ana-"+string(role), role)
}

func activeUsers() userStore {
	return userStore{
		"ana-USER":  {Username: "ana-USER", Role: entity.RoleUser, Enabled: true},
		"ana-ADMIN": {Username: "ana-ADMIN", Role: entity.RoleAdmin, Enabled: true},
	}
}

func protected(auth *Auth, roles ...entity.Role) http.Handler {
	return auth.Authenticate(auth.RequireRole(roles...)(okHandler()))
}

func TestAuthSecuredPolicy(t *testing.T) {
	tokens, err := security.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	auth := NewAuth(tokens, activeUsers(), security.PolicyFor("production"), zerolog.Nop())
	h := protected(auth, entity.RoleAdmin)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"sem token", "", http.StatusUnauthorized},
		{"token lixo", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"esquema errado", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized},
		{"papel insuficiente", "Bearer " + issue(t, tokens, entity.RoleUser), http.StatusForbidden},
		{"admin", "Bearer " + issue(t, tokens, entity.RoleAdmin), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/all", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAuthDevelopmentPolicyLetsAnonymousThrough(t *testing.T) {
	tokens, err := security.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	auth := NewAuth(tokens, activeUsers(), security.PolicyFor("development"), zerolog.Nop())

	rec := httptest.NewRecorder()
	protected(auth, entity.RoleAdmin).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthStoresClaimsInContext(t *testing.T) {
	tokens, err := security.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	auth := NewAuth(tokens, activeUsers(), security.PolicyFor("staging"), zerolog.Nop())

	var subject string
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		subject = claims.Subject
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, entity.RoleUser))

	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "ana-USER", subject)
}

func TestAuthChecksTokenSubjectAgainstUsers(t *testing.T) {
	tokens, err := security.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	users := userStore{
		"desativado": {Username: "desativado", Role: entity.RoleAdmin, Enabled: false},
		"rebaixado":  {Username: "rebaixado", Role: entity.RoleUser, Enabled: true},
	}
	h := protected(NewAuth(tokens, users, security.PolicyFor("production"), zerolog.Nop()), entity.RoleAdmin)

	cases := []struct {
		name     string
		username string
		want     int
	}{
		{"usuário removido", "removido", http.StatusUnauthorized},
		{"usuário desativado", "desativado", http.StatusUnauthorized},
		{"admin rebaixado", "rebaixado", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/all", nil)
			req.Header.Set("Authorization", "Bearer "+issueFor(t, tokens, tc.username, entity.RoleAdmin))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAuthUserLookupFailureIs500(t *testing.T) {
	tokens, err := security.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	h := protected(NewAuth(tokens, failingUsers{}, security.PolicyFor("production"), zerolog.Nop()), entity.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, entity.RoleUser))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitRejectsWith429(t *testing.T) {
	h := RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), zerolog.Nop())(okHandler())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/squarespace/lead", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	h.ServeHTTP(first, req)
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["timestamp"])
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := RateLimit(brokenLimiter{}, zerolog.Nop())(okHandler())
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.0.9:4321"
	assert.Equal(t, "192.168.0.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.2")
	req.Header.Set("X-Forwarded-For", "200.1.2.3, 10.0.0.1")
	assert.Equal(t, "192.168.0.9", ClientIP(req))
}

func TestRateLimitIgnoresForgedForwardedFor(t *testing.T) {
	h := RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), zerolog.Nop())(okHandler())

	codes := make([]int, 0, 3)
	for _, forged := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/squarespace/lead", nil)
		req.RemoteAddr = "10.9.9.9:1234"
		req.Header.Set("X-Forwarded-For", forged)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimitBehindTrustedProxyUsesRealIP(t *testing.T) {
	h := chimw.RealIP(RateLimit(ratelimit.NewMemoryLimiter(1, time.Minute), zerolog.Nop())(okHandler()))

	for _, client := range []string{"200.1.1.1", "200.2.2.2"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, client)
	}
}

func TestRecoveryReturnsProblem(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":500`)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	var seen string
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			seen = routePattern(r)
		})
	}).Get("/clinics", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clinics", nil))

	assert.Equal(t, "/clinics", seen)
	assert.Equal(t, "unmatched", routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}
