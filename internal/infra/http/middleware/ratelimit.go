package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/infra/ratelimit"
)

type rateLimitResponse struct {
	OK        bool      `json:"ok"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// RateLimit limita por IP. Se o backend (Redis) falhar a requisição passa.
func RateLimit(limiter ratelimit.Limiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				RecordIntegrationError("redis")
				logger.Error().Err(err).Str("ip", ip).Msg("rate limiter indisponível")
				allowed = true
			}
			if !allowed {
				RecordRateLimited()
				logger.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limit excedido")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(rateLimitResponse{
					OK:        false,
					Error:     "Demasiadas solicitudes. Intente nuevamente en un minuto.",
					Timestamp: time.Now(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP é o RemoteAddr sem porta. Cabeçalhos de proxy só contam quando
// chi middleware.RealIP roda antes (TRUST_PROXY_HEADERS).
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
