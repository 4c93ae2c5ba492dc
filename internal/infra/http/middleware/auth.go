package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/infra/security"
)

type claimsKey struct{}

type TokenValidator interface {
	Validate(raw string) (*security.Claims, error)
}

// UserLoader resolve o subject do token para o usuário atual.
type UserLoader interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Auth aplica a Policy do ambiente: em development tudo passa,
// nos demais o Bearer é obrigatório e os papéis são conferidos.
type Auth struct {
	Tokens TokenValidator
	Users  UserLoader
	Policy security.Policy
	Logger zerolog.Logger
}

func NewAuth(tokens TokenValidator, users UserLoader, policy security.Policy, logger zerolog.Logger) *Auth {
	return &Auth{Tokens: tokens, Users: users, Policy: policy, Logger: logger}
}

// Authenticate coloca as claims no contexto. Sem RequireAuth um token
// ausente é aceito, mas um token inválido continua sendo recusado.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, found := bearerToken(r)
		if !found {
			if a.Policy.RequireAuth {
				problem.Write(w, r, http.StatusUnauthorized, "unauthorized", "Se requiere autenticación", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.Tokens.Validate(raw)
		if err != nil {
			a.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token recusado")
			problem.Write(w, r, http.StatusUnauthorized, "unauthorized", "Token inválido o expirado", nil)
			return
		}

		// papéis e estado da conta vêm do banco, não do token
		user, err := a.Users.FindByUsername(r.Context(), claims.Subject)
		if errors.Is(err, entity.ErrUserNotFound) {
			a.Logger.Warn().Str("user", claims.Subject).Msg("token de usuário inexistente")
			problem.Write(w, r, http.StatusUnauthorized, "unauthorized", "Token inválido o expirado", nil)
			return
		}
		if err != nil {
			a.Logger.Error().Err(err).Str("user", claims.Subject).Msg("erro ao carregar usuário do token")
			problem.Internal(w, r)
			return
		}
		if !user.Enabled {
			a.Logger.Warn().Str("user", claims.Subject).Msg("token de usuário desativado")
			problem.Write(w, r, http.StatusUnauthorized, "unauthorized", "La cuenta está deshabilitada", nil)
			return
		}
		claims.Authorities = user.Authorities()

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole libera a rota se o token tiver qualquer um dos papéis.
func (a *Auth) RequireRole(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Policy.EnforceRoles {
				next.ServeHTTP(w, r)
				return
			}
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, "unauthorized", "Se requiere autenticación", nil)
				return
			}
			for _, role := range roles {
				if claims.HasAuthority(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			a.Logger.Warn().
				Str("user", claims.Subject).
				Str("path", r.URL.Path).
				Msg("acesso negado por papel")
			problem.Write(w, r, http.StatusForbidden, "forbidden", "No tiene permisos para este recurso", nil)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*security.Claims)
	return c, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
