package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fardapack/crm-api/internal/auth"
	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/database"
	"github.com/fardapack/crm-api/internal/http/handler"
	"github.com/fardapack/crm-api/internal/http/middleware"
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	authHandler      *handler.AuthHandler
	contactHandler   *handler.ContactHandler
	companyHandler   *handler.CompanyHandler
	callHandler      *handler.CallHandler
	followUpHandler  *handler.FollowUpHandler
	productHandler   *handler.ProductHandler
	orderHandler     *handler.OrderHandler
	accountHandler   *handler.AccountHandler
	adminHandler     *handler.AdminHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
	companyHandler *handler.CompanyHandler,
	callHandler *handler.CallHandler,
	followUpHandler *handler.FollowUpHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	accountHandler *handler.AccountHandler,
	adminHandler *handler.AdminHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		authHandler:      authHandler,
		contactHandler:   contactHandler,
		companyHandler:   companyHandler,
		callHandler:      callHandler,
		followUpHandler:  followUpHandler,
		productHandler:   productHandler,
		orderHandler:     orderHandler,
		accountHandler:   accountHandler,
		adminHandler:     adminHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeoutDuration()))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database readiness probe
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Post("/auth/logout", rt.authHandler.Logout)
			r.Get("/auth/me", rt.authHandler.Me)

			// Contacts
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", rt.contactHandler.ListContacts)
				r.Post("/", rt.contactHandler.CreateContact)
				r.Get("/options", rt.contactHandler.ContactOptions)
				r.Put("/bulk-owner", rt.contactHandler.BulkReassignContacts)
				r.Get("/{id}", rt.contactHandler.GetContact)
				r.Put("/{id}", rt.contactHandler.UpdateContact)
				r.Get("/{id}/profile", rt.contactHandler.GetContactProfile)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.contactHandler.DeleteContact)
			})

			// Companies
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", rt.companyHandler.ListCompanies)
				r.Post("/", rt.companyHandler.CreateCompany)
				r.Get("/options", rt.companyHandler.CompanyOptions)
				r.Get("/{id}", rt.companyHandler.GetCompany)
				r.Put("/{id}", rt.companyHandler.UpdateCompany)
				r.Get("/{id}/profile", rt.companyHandler.GetCompanyProfile)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.companyHandler.DeleteCompany)
			})

			// Calls
			r.Route("/calls", func(r chi.Router) {
				r.Get("/", rt.callHandler.ListCalls)
				r.Post("/", rt.callHandler.CreateCall)
				r.Delete("/{id}", rt.callHandler.DeleteCall)
			})

			// Follow-ups
			r.Route("/followups", func(r chi.Router) {
				r.Get("/", rt.followUpHandler.ListFollowUps)
				r.Post("/", rt.followUpHandler.CreateFollowUp)
				r.Put("/{id}", rt.followUpHandler.UpdateFollowUp)
				r.Put("/{id}/status", rt.followUpHandler.UpdateFollowUpStatus)
				r.Delete("/{id}", rt.followUpHandler.DeleteFollowUp)
			})

			// Products (catalog writes are admin-only)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.productHandler.ListProducts)
				r.Get("/{id}", rt.productHandler.GetProduct)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/", rt.productHandler.CreateProduct)
					r.Put("/{id}", rt.productHandler.UpdateProduct)
					r.Delete("/{id}", rt.productHandler.DeleteProduct)
				})
			})

			// Orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.ListOrders)
				r.Post("/", rt.orderHandler.CreateOrder)
				r.Put("/{id}", rt.orderHandler.UpdateOrder)
				r.Delete("/{id}", rt.orderHandler.DeleteOrder)
			})

			// Dashboard
			r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)

			// Owner picker, open to any authenticated caller
			r.Get("/accounts/options", rt.accountHandler.AccountOptions)

			// Admin
			r.Route("/admin", func(r chi.Router) {
				r.Get("/accounts", rt.accountHandler.ListAccounts)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/accounts", rt.accountHandler.CreateAccount)
					r.Put("/accounts/{id}/password", rt.accountHandler.ChangeAccountPassword)
					r.Delete("/accounts/{id}", rt.accountHandler.DeleteAccount)
					r.Get("/backup", rt.adminHandler.DownloadBackup)
					r.Post("/restore", rt.adminHandler.RestoreBackup)
				})
			})
		})
	})

	// Static SPA bundle, mounted after the API routes
	if rt.cfg.Frontend.DistDir != "" {
		r.NotFound(middleware.SPAHandler(rt.cfg.Frontend.DistDir, rt.logger).ServeHTTP)
	}

	return r
}
