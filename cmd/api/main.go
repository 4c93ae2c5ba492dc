package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/xavierca1/kiwipay-leads/internal/config"
)

// version é sobrescrita no build (-ldflags "-X main.version=...").
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "kiwipay-leads",
		Short:         "API de leads de financiamiento médico KiwiPay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(populateCmd())
	rootCmd.AddCommand(notifyWorkerCmd())

	if err := rootCmd.Execute(); err != nil {
		logger := newLogger("", os.Getenv("ENV"))
		logger.Error().Err(err).Msg("comando falhou")
		os.Exit(1)
	}
}

// newLogger: console legível em development, JSON no resto.
func newLogger(level, env string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout)
	if env == "" || env == config.EnvDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger.Level(lvl).With().Timestamp().Str("service", "kiwipay-leads").Logger()
}

// loadConfig carrega a config e já devolve o logger configurado.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, newLogger("", os.Getenv("ENV")), err
	}
	return cfg, newLogger(cfg.LogLevel, cfg.Env), nil
}
