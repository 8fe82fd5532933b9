package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightideas/dispatch-backend/api/controllers"
	"github.com/brightideas/dispatch-backend/api/middleware"
	asgnsvc "github.com/brightideas/dispatch-backend/internal/assignments"
	importsvc "github.com/brightideas/dispatch-backend/internal/imports"
	techsvc "github.com/brightideas/dispatch-backend/internal/technicians"
	verifysvc "github.com/brightideas/dispatch-backend/internal/verify"
	"github.com/brightideas/dispatch-backend/pkg/config"
	"github.com/brightideas/dispatch-backend/pkg/db"
	"github.com/brightideas/dispatch-backend/pkg/logger"
	"github.com/brightideas/dispatch-backend/pkg/redis"
	"github.com/brightideas/dispatch-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	metricsRegistry *prometheus.Registry,
	technicianService techsvc.Service,
	assignmentService asgnsvc.Service,
	verifyService verifysvc.Service,
	importService importsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if redisClient != nil {
		r.Use(middleware.Idempotency(redisClient, logg))
	}

	r.Get("/", controllers.ViewSwitch(logg))

	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger, gcsClient))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/technicians", func(r chi.Router) {
		r.Get("/", controllers.ListTechnicians(technicianService, logg))
		r.Post("/", controllers.CreateTechnician(technicianService, cfg.Photos, logg))
		r.Route("/{badgeID}", func(r chi.Router) {
			r.Get("/", controllers.GetTechnician(technicianService, logg))
			r.Put("/", controllers.UpdateTechnician(technicianService, cfg.Photos, logg))
			r.Delete("/", controllers.DeleteTechnician(technicianService, logg))
		})
	})

	r.Route("/api/v1/assignments", func(r chi.Router) {
		r.Get("/", controllers.ListAssignments(assignmentService, logg))
		r.Post("/", controllers.CreateAssignment(assignmentService, logg))
		r.Route("/{assignmentID}", func(r chi.Router) {
			r.Get("/", controllers.GetAssignment(assignmentService, logg))
			r.Put("/", controllers.UpdateAssignment(assignmentService, logg))
			r.Delete("/", controllers.DeleteAssignment(assignmentService, logg))
		})
	})

	r.Route("/api/v1/verify", func(r chi.Router) {
		if redisClient != nil {
			policy := middleware.NewRateLimitPolicy("verify", cfg.Verify.RateLimitWindow, cfg.Verify.RateLimitPerIP, cfg.Verify.RateLimitPerBadge)
			r.Use(middleware.RateLimit(policy, redisClient, logg))
		}
		r.Get("/summary", controllers.VerifySummary(verifyService, logg))
		r.Post("/assignments/{assignmentID}", controllers.VerifyAssignment(verifyService, logg))
	})

	r.Route("/api/v1/imports", func(r chi.Router) {
		r.Post("/validate", controllers.ImportValidate(importService, logg))
		r.Post("/apply", controllers.ImportApply(importService, logg))
	})

	return r
}
