package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/khiva-consulting/backoffice-api/internal/auth"
	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/database"
	"github.com/khiva-consulting/backoffice-api/internal/http/handler"
	"github.com/khiva-consulting/backoffice-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/khiva-consulting/backoffice-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	operatorHandler  *handler.OperatorHandler
	leadStageHandler *handler.LeadStageHandler
	leadHandler      *handler.LeadHandler
	clientHandler    *handler.ClientHandler
	contractHandler  *handler.ContractHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	operatorHandler *handler.OperatorHandler,
	leadStageHandler *handler.LeadStageHandler,
	leadHandler *handler.LeadHandler,
	clientHandler *handler.ClientHandler,
	contractHandler *handler.ContractHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		authHandler:      authHandler,
		userHandler:      userHandler,
		operatorHandler:  operatorHandler,
		leadStageHandler: leadStageHandler,
		leadHandler:      leadHandler,
		clientHandler:    clientHandler,
		contractHandler:  contractHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe: OK only when the database answers
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	// Database health check (pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/refresh", rt.authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/auth/me", rt.authHandler.Me)

			// Staff users (ceoadmin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireCEOAdmin)
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Get("/{id}", rt.userHandler.GetByID)
				r.Put("/{id}", rt.userHandler.Update)
				r.Put("/{id}/password", rt.userHandler.ChangePassword)
				r.Delete("/{id}", rt.userHandler.Delete)
			})

			// Call operators
			r.Route("/operators", func(r chi.Router) {
				r.Get("/", rt.operatorHandler.List)
				r.Post("/", rt.operatorHandler.Create)
				r.Get("/{id}", rt.operatorHandler.GetByID)
				r.Put("/{id}", rt.operatorHandler.Update)
				r.Delete("/{id}", rt.operatorHandler.Delete)
			})

			// Pipeline stages
			r.Route("/lead-stages", func(r chi.Router) {
				r.Get("/", rt.leadStageHandler.List)
				r.Post("/", rt.leadStageHandler.Create)
				r.Get("/{id}", rt.leadStageHandler.GetByID)
				r.Put("/{id}", rt.leadStageHandler.Update)
				r.Delete("/{id}", rt.leadStageHandler.Delete)
			})

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.List)
				r.Post("/", rt.leadHandler.Create)
				r.Post("/quick", rt.leadHandler.QuickCreate)
				r.Get("/board", rt.leadHandler.Board)
				r.Get("/statistics", rt.leadHandler.Statistics)
				r.Get("/{id}", rt.leadHandler.GetByID)
				r.Put("/{id}", rt.leadHandler.Update)
				r.Delete("/{id}", rt.leadHandler.Delete)
				r.Post("/{id}/transition", rt.leadHandler.Transition)
				r.Post("/{id}/convert", rt.leadHandler.Convert)
				r.Post("/{id}/audio", rt.leadHandler.UploadAudio)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/export/excel", rt.clientHandler.ExportExcel)
				r.Get("/export/pdf", rt.clientHandler.ExportPDF)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.contractHandler.List)
				r.Post("/", rt.contractHandler.Create)
				r.Get("/by-number/{number}", rt.contractHandler.GetByNumber)
				r.Get("/{id}", rt.contractHandler.GetByID)
				r.Put("/{id}", rt.contractHandler.Update)
				r.Delete("/{id}", rt.contractHandler.Delete)
				r.Get("/{id}/details", rt.contractHandler.Details)
				r.Get("/{id}/pdf", rt.contractHandler.ExportPDF)
			})

			// Dashboards (ceoadmin only)
			r.Route("/dashboard", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireCEOAdmin)
				r.Get("/overview", rt.dashboardHandler.Overview)
				r.Get("/contracts", rt.dashboardHandler.Contracts)
				r.Get("/leads", rt.dashboardHandler.Leads)
			})
		})
	})

	return r
}
