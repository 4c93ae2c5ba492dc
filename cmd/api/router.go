package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/handlers"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/middleware"
	"github.com/xavierca1/kiwipay-leads/internal/infra/ratelimit"
)

type routerDeps struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	TrustProxy  bool
	Auth        *middleware.Auth
	Limiter     ratelimit.Limiter

	Leads     *handlers.LeadHandler
	Intake    *handlers.IntakeHandler
	Users     *handlers.AuthHandler
	Reference *handlers.ReferenceHandler
	Populate  *handlers.PopulateHandler
	Health    *handlers.HealthHandler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxy {
		// só atrás de proxy conhecido
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Result-Warning"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// públicas
		r.Post("/auth/register", d.Users.Register)
		r.Post("/auth/login", d.Users.Login)
		r.With(middleware.RateLimit(d.Limiter, d.Logger)).Post("/squarespace/lead", d.Intake.Handle)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(d.Auth.RequireRole(entity.RoleUser, entity.RoleAdmin))

				r.Post("/leads", d.Leads.Create)
				r.Get("/leads", d.Leads.List)
				r.Get("/leads/stats", d.Leads.Stats)
				r.Get("/leads/{id}", d.Leads.Get)
				r.Patch("/leads/{id}/status", d.Leads.UpdateStatus)
				r.Put("/leads/{id}", d.Leads.Update)

				r.Get("/clinics", d.Reference.ListClinics)
				r.Get("/medical-specialties", d.Reference.ListSpecialties)
				r.Get("/populate/status", d.Populate.Status)
			})

			r.Group(func(r chi.Router) {
				r.Use(d.Auth.RequireRole(entity.RoleAdmin))

				r.Get("/leads/all", d.Leads.ListAll)
				r.Get("/leads/all/filtered", d.Leads.ListAll)
				r.Post("/clinics", d.Reference.CreateClinic)
				r.Post("/medical-specialties", d.Reference.CreateSpecialty)
				r.Post("/populate/excel", d.Populate.Populate)
			})
		})
	})

	return r
}
