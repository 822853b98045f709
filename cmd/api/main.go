package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khiva-consulting/backoffice-api/docs"
	"github.com/khiva-consulting/backoffice-api/internal/auth"
	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/database"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/khiva-consulting/backoffice-api/internal/http/handler"
	"github.com/khiva-consulting/backoffice-api/internal/http/middleware"
	"github.com/khiva-consulting/backoffice-api/internal/http/router"
	"github.com/khiva-consulting/backoffice-api/internal/jobs"
	"github.com/khiva-consulting/backoffice-api/internal/logger"
	"github.com/khiva-consulting/backoffice-api/internal/media"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"github.com/khiva-consulting/backoffice-api/internal/sms"
	"github.com/khiva-consulting/backoffice-api/internal/storage"
	"github.com/khiva-consulting/backoffice-api/internal/warehouse"
	"go.uber.org/zap"
)

// @title Khiva Consulting Back Office API
// @version 1.0
// @description Back-office API for a visa consulting agency: leads pipeline, clients, contracts, exports and dashboards

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize media storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Reporting warehouse connection (optional)
	warehouseClient, err := warehouse.NewClient(&cfg.Warehouse, log)
	if err != nil {
		log.Warn("Warehouse connection failed, continuing without it", zap.Error(err))
		warehouseClient = nil
	}
	if warehouseClient != nil {
		if err := warehouseClient.EnsureSchema(ctx); err != nil {
			log.Warn("Failed to ensure warehouse schema", zap.Error(err))
		}
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	stageRepo := repository.NewLeadStageRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	clientRepo := repository.NewClientRepository(db)
	contractRepo := repository.NewContractRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	tokenService := auth.NewTokenService(&cfg.Auth)
	reconciler := media.NewReconciler(fileStorage, log)

	stageService := service.NewStageService(stageRepo, leadRepo, log)
	operatorService := service.NewOperatorService(operatorRepo, log)
	clientService := service.NewClientService(clientRepo, log)
	leadService := service.NewLeadService(leadRepo, stageRepo, operatorRepo, clientRepo, fileStorage, log)
	contractService := service.NewContractService(contractRepo, clientService, reconciler, log)
	dashboardService := service.NewDashboardService(contractRepo, clientRepo, leadRepo, stageRepo, log)
	userService := service.NewUserService(userRepo, tokenService, log)

	// Make sure the pipeline's system stages exist before serving requests
	if err := stageService.EnsureSystemStages(ctx); err != nil {
		return fmt.Errorf("failed to seed system stages: %w", err)
	}

	// Exporters
	excelExporter := export.NewExcelExporter(log)
	pdfExporter := export.NewPDFExporter(log)

	// SMS gateway
	var smsSender sms.Sender
	if cfg.SMS.Enabled {
		smsSender = sms.NewClient(&cfg.SMS, log)
	} else {
		log.Info("SMS gateway disabled, reminders will be dropped")
		smsSender = &sms.NopSender{}
	}

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(tokenService, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, log)
	userHandler := handler.NewUserHandler(userService, log)
	operatorHandler := handler.NewOperatorHandler(operatorService, log)
	leadStageHandler := handler.NewLeadStageHandler(stageService, log)
	leadHandler := handler.NewLeadHandler(leadService, log)
	clientHandler := handler.NewClientHandler(clientService, excelExporter, pdfExporter, log)
	contractHandler := handler.NewContractHandler(contractService, pdfExporter, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		operatorHandler,
		leadStageHandler,
		leadHandler,
		clientHandler,
		contractHandler,
		dashboardHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.EnableScheduler {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterFollowUpReminderJob(
			scheduler, leadRepo, smsSender, log,
			cfg.Jobs.FollowUpReminderCron, cfg.Server.RequestTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register follow-up reminder job", zap.Error(err))
		}

		if warehouseClient != nil {
			if err := jobs.RegisterWarehouseSyncJob(
				scheduler, contractRepo, warehouseClient, log,
				cfg.Jobs.WarehouseSyncCron, cfg.Warehouse.QueryTimeoutDuration(),
			); err != nil {
				log.Error("Failed to register warehouse sync job", zap.Error(err))
			}
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.String("follow_up_cron", cfg.Jobs.FollowUpReminderCron),
			zap.String("warehouse_cron", cfg.Jobs.WarehouseSyncCron),
		)
	} else {
		log.Info("Scheduler disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if warehouseClient != nil {
			if err := warehouseClient.Close(); err != nil {
				log.Warn("Error closing warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
