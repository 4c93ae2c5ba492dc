package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/xavierca1/kiwipay-leads/internal/config"
	"github.com/xavierca1/kiwipay-leads/internal/infra/database"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/handlers"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/middleware"
	"github.com/xavierca1/kiwipay-leads/internal/infra/queue"
	"github.com/xavierca1/kiwipay-leads/internal/infra/ratelimit"
	"github.com/xavierca1/kiwipay-leads/internal/infra/security"
	"github.com/xavierca1/kiwipay-leads/internal/infra/seed"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia a API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info().Msg("conectado ao banco")

	// RabbitMQ é opcional: sem ele os eventos de lead não são publicados
	var events usecase.LeadEventPublisher
	var rabbitConn *amqp091.Connection
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			middleware.RecordIntegrationError("rabbitmq")
			logger.Error().Err(err).Msg("RabbitMQ indisponível, eventos de lead desativados")
		} else {
			defer rabbit.Close()
			rabbitConn = rabbit.Conn
			events = queue.NewProducer(rabbit.Ch)
		}
	}

	limiter, rdb := newLimiter(ctx, cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	tokens, err := security.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		return err
	}
	policy := security.PolicyFor(cfg.Env)
	if !policy.RequireAuth {
		logger.Warn().Str("env", cfg.Env).Msg("autenticação desativada neste ambiente")
	}

	// Repositórios
	leadRepo := database.NewLeadRepository(db)
	clinicRepo := database.NewClinicRepository(db)
	specialtyRepo := database.NewMedicalSpecialtyRepository(db)
	userRepo := database.NewUserRepository(db)
	tx := database.NewTxManager(db)

	// UseCases
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, clinicRepo, specialtyRepo, tx, events, logger)
	createExternalUC := usecase.NewCreateExternalLeadUseCase(leadRepo, clinicRepo, specialtyRepo, events, logger)
	listLeadsUC := usecase.NewListLeadsUseCase(leadRepo, cfg.Timezone)
	updateStatusUC := usecase.NewUpdateLeadStatusUseCase(leadRepo, tx, events, logger)
	updateLeadUC := usecase.NewUpdateLeadUseCase(leadRepo, clinicRepo, specialtyRepo, tx, events, logger)
	registerUC := usecase.NewRegisterUserUseCase(userRepo, security.NewBcryptHasher(), logger)
	loginUC := usecase.NewLoginUseCase(userRepo, security.NewBcryptHasher(), tokens, logger)
	referenceUC := usecase.NewReferenceDataUseCase(clinicRepo, specialtyRepo)
	populateUC := newPopulateUseCase(db, cfg.SeedFile, logger)

	router := newRouter(routerDeps{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxyHeaders,
		Auth:        middleware.NewAuth(tokens, userRepo, policy, logger),
		Limiter:     limiter,
		Leads:       handlers.NewLeadHandler(createLeadUC, listLeadsUC, updateStatusUC, updateLeadUC, logger),
		Intake:      handlers.NewIntakeHandler(createExternalUC, logger),
		Users:       handlers.NewAuthHandler(registerUC, loginUC, logger),
		Reference:   handlers.NewReferenceHandler(referenceUC, logger),
		Populate:    handlers.NewPopulateHandler(populateUC, logger),
		Health:      handlers.NewHealthHandler(db, rabbitConn, rdb, version),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("servidor KiwiPay no ar")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("desligando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("servidor parado")
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return database.NewDBConnection(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
}

// newLimiter usa Redis quando REDIS_URL está definido; se não conectar cai no limiter em memória.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ratelimit.Limiter, *redis.Client) {
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("rate limit distribuído via Redis")
			return ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute), rdb
		}
		middleware.RecordIntegrationError("redis")
		logger.Error().Err(err).Msg("Redis indisponível, usando rate limit em memória")
	}
	return ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute), nil
}

func newPopulateUseCase(db *sql.DB, seedFile string, logger zerolog.Logger) *usecase.PopulateReferenceDataUseCase {
	clinics := database.NewClinicRepository(db)
	specialties := database.NewMedicalSpecialtyRepository(db)
	importer := database.NewReferenceImporter(database.NewTxManager(db), clinics, specialties)
	return usecase.NewPopulateReferenceDataUseCase(seed.NewExcelSource(seedFile), importer, clinics, specialties, logger)
}
