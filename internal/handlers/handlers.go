package handlers

import (
	"Lumen/internal/config"
	"Lumen/internal/middleware"
	"Lumen/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров.
// reg: реестр метрик; при nil создаётся собственный с go/process коллекторами.
func NewHandler(
	userService *service.UserService,
	logger *zap.SugaredLogger,
	config *config.Config,
	reg *prometheus.Registry,
) *Handler {
	r := chi.NewRouter()

	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	metrics := middleware.NewMetrics(reg)

	r.Use(metrics.Handler)

	// promhttp сам сжимает ответ, поэтому /metrics живёт вне WithGzip
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	userHandler := NewUserHandler(userService, logger, config, metrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithGzip)
		r.Use(middleware.WithLogging)
		r.Use(middleware.WithAuth(config.AuthSecret))

		// Auth routes
		r.Post("/api/auth/register", userHandler.Register)
		r.Post("/api/auth/login", userHandler.Login)
		r.Get("/api/auth/me", userHandler.Me)

		// Quota routes
		r.Post("/api/quota/consume", userHandler.ConsumeQuota)
		if config.AdminToken != "" {
			r.Put("/api/admin/users/{id}/status", userHandler.SetStatus)
		}
	})

	return &Handler{Router: r}
}
