package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo embutido no binário

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"

	// só para desenvolvimento local; fora dele JWT_SECRET é obrigatório
	devJWTSecret = "kiwipay-dev-secret-not-for-production-use"
)

type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	JWTSecret          string
	JWTExpiration      time.Duration
	CORSOrigins        []string
	RedisURL           string
	RateLimitPerMinute int
	TrustProxyHeaders  bool
	RabbitMQURL        string
	Mail               MailConfig
	NotifyTo           string
	SeedFile           string
	Timezone           *time.Location
}

type MailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

// Load lê .env (se existir) e depois as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("TRUST_PROXY_HEADERS", false)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("SEED_FILE", "static/seed.xlsx")
	v.SetDefault("TZ_NAME", "America/Lima")

	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"JWT_SECRET", "JWT_EXPIRATION", "CORS_ORIGINS", "REDIS_URL", "RATE_LIMIT_PER_MINUTE",
		"TRUST_PROXY_HEADERS",
		"RABBITMQ_URL", "MAIL_HOST", "MAIL_PORT", "MAIL_USER", "MAIL_PASS", "MAIL_FROM",
		"NOTIFY_TO", "SEED_FILE", "TZ_NAME",
	} {
		_ = v.BindEnv(key)
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                strings.ToLower(strings.TrimSpace(v.GetString("ENV"))),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBMaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
		JWTExpiration:      v.GetDuration("JWT_EXPIRATION"),
		RedisURL:           v.GetString("REDIS_URL"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		TrustProxyHeaders:  v.GetBool("TRUST_PROXY_HEADERS"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		Mail: MailConfig{
			Host: v.GetString("MAIL_HOST"),
			Port: v.GetInt("MAIL_PORT"),
			User: v.GetString("MAIL_USER"),
			Pass: v.GetString("MAIL_PASS"),
			From: v.GetString("MAIL_FROM"),
		},
		NotifyTo: v.GetString("NOTIFY_TO"),
		SeedFile: v.GetString("SEED_FILE"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return nil, fmt.Errorf("ENV inválido: %q (use development, staging ou production)", cfg.Env)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	secret := decodeSecret(v.GetString("JWT_SECRET"))
	if secret == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("JWT_SECRET is required when ENV=%s", cfg.Env)
		}
		secret = devJWTSecret
	}
	cfg.JWTSecret = secret

	if cfg.JWTExpiration <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION inválido")
	}

	loc, err := time.LoadLocation(v.GetString("TZ_NAME"))
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME inválido: %w", err)
	}
	cfg.Timezone = loc

	return cfg, nil
}

// decodeSecret aceita o segredo em base64 ou texto puro.
func decodeSecret(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil && len(decoded) >= 32 {
		return string(decoded)
	}
	return raw
}

func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
