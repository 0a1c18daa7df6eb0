package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/database"
	"github.com/fardapack/crm-api/internal/http/handler"
	"github.com/fardapack/crm-api/internal/http/middleware"
	"github.com/fardapack/crm-api/internal/http/router"
	"github.com/fardapack/crm-api/internal/jobs"
	"github.com/fardapack/crm-api/internal/logger"
	"github.com/fardapack/crm-api/internal/repository"
	"github.com/fardapack/crm-api/internal/service"
	"go.uber.org/zap"
)

// @title FardaPack CRM API
// @version 1.0
// @description Mini-CRM API for contact, call, follow-up, and order management

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := database.EnsureDefaultAdmin(db, &cfg.Auth); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db)
	callRepo := repository.NewCallRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	authService := service.NewAuthService(accountRepo, sessionRepo, &cfg.Auth, log)
	accountService := service.NewAccountService(accountRepo, &cfg.Auth, log)
	companyService := service.NewCompanyService(companyRepo, contactRepo, callRepo, followUpRepo, log)
	contactService := service.NewContactService(contactRepo, companyRepo, callRepo, followUpRepo, log)
	callService := service.NewCallService(callRepo, contactRepo, log)
	followUpService := service.NewFollowUpService(followUpRepo, contactRepo, log)
	productService := service.NewProductService(productRepo, log)
	orderService := service.NewOrderService(orderRepo, contactRepo, productRepo, log)
	dashboardService := service.NewDashboardService(contactRepo, companyRepo, callRepo, followUpRepo, log)
	backupService := service.NewBackupService(&cfg.Database, &cfg.Backup, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(authService, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	companyHandler := handler.NewCompanyHandler(companyService, log)
	callHandler := handler.NewCallHandler(callService, log)
	followUpHandler := handler.NewFollowUpHandler(followUpService, log)
	productHandler := handler.NewProductHandler(productService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	accountHandler := handler.NewAccountHandler(accountService, log)
	adminHandler := handler.NewAdminHandler(backupService, &cfg.Backup, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		contactHandler,
		companyHandler,
		callHandler,
		followUpHandler,
		productHandler,
		orderHandler,
		accountHandler,
		adminHandler,
		dashboardHandler,
	)

	// Start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.SessionSweepEnabled {
		scheduler = jobs.NewScheduler(log)
		sweep := jobs.NewSessionSweepJob(sessionRepo, log)
		if err := scheduler.AddJob(jobs.SessionSweepJobName, cfg.Jobs.SessionSweepSchedule, sweep.Run); err != nil {
			log.Error("Failed to register session sweep job", zap.Error(err))
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Session sweep disabled")
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

		log.Info("Server stopped gracefully")
	}

	return nil
}
