// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/analytics"
	"github.com/your-org/fashion-store/internal/domain/cart"
	"github.com/your-org/fashion-store/internal/domain/contact"
	"github.com/your-org/fashion-store/internal/domain/inventory"
	"github.com/your-org/fashion-store/internal/domain/newsletter"
	"github.com/your-org/fashion-store/internal/domain/order"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/domain/user"
	"github.com/your-org/fashion-store/internal/domain/wishlist"
	"github.com/your-org/fashion-store/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/fashion-store/internal/infrastructure/database/redis"
	"github.com/your-org/fashion-store/internal/interfaces/http/handlers"
	"github.com/your-org/fashion-store/internal/interfaces/http/middleware"
	"github.com/your-org/fashion-store/internal/interfaces/http/routes"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"github.com/your-org/fashion-store/internal/pkg/email"
	"github.com/your-org/fashion-store/internal/pkg/pdf"
)

const maxRequestBody = 10 << 20

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	db         *postgres.DB
	cache      *redisdb.Client
	startedAt  time.Time
}

// NewServer wires the services and handlers and builds the router
func NewServer(cfg *config.Config, logger *logrus.Logger, db *postgres.DB, cache *redisdb.Client, mailer *email.EmailService) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		gin:       gin.New(),
		db:        db,
		cache:     cache,
		startedAt: time.Now(),
	}

	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxy list, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}

	s.setupMiddleware()
	s.setupRoutes(mailer)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware every request passes through
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes(mailer *email.EmailService) {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	sessions := cart.NewRedisSessionStore(s.cache, s.config.Session.TTL)
	apiV1.Use(middleware.Session(sessions, s.config.Session, s.logger))

	routes.SetupRoutes(apiV1, &routes.Dependencies{
		Config:   s.config,
		Logger:   s.logger,
		Tokens:   auth.NewJWTManager(s.config),
		Limiter:  s.cache,
		Handlers: s.buildHandlers(mailer),
	})
}

func (s *Server) buildHandlers(mailer *email.EmailService) *routes.Handlers {
	db := s.db.GetDB()
	cfg := s.config
	log := s.logger

	productService := product.NewService(db, cfg, log)
	reviewService := product.NewReviewService(db, cfg, log)
	commentService := product.NewCommentService(db, cfg, log)
	inventoryService := inventory.NewService(db, cfg, log)
	cartService := cart.NewService(productService, log)
	orderService := order.NewService(db, cfg, log, inventoryService, mailer)
	userService := user.NewService(db, cfg, log, mailer)
	adminService := user.NewAdminService(db, cfg, log)
	wishlistService := wishlist.NewService(db, cfg, log, cartService)
	newsletterService := newsletter.NewService(db, cfg, log)
	contactService := contact.NewService(db, cfg, log)
	analyticsService := analytics.NewService(db, cfg, log)

	return &routes.Handlers{
		Auth:       handlers.NewAuthHandler(userService),
		Profile:    handlers.NewUserProfileHandler(userService),
		Product:    handlers.NewProductHandler(productService, wishlistService),
		Review:     handlers.NewReviewHandler(reviewService, commentService),
		Cart:       handlers.NewCartHandler(cartService),
		Checkout:   handlers.NewCheckoutHandler(orderService, cartService, userService),
		Order:      handlers.NewOrderHandler(orderService),
		Invoice:    handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg)),
		Wishlist:   handlers.NewWishlistHandler(wishlistService),
		Engagement: handlers.NewEngagementHandler(newsletterService, contactService),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService),
		Inventory:  handlers.NewInventoryHandler(inventoryService),
		UserAdmin:  handlers.NewUserAdminHandler(adminService, userService),
	}
}

// healthCheck reports whether the database and Redis answer
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if err := s.db.Health(ctx); err != nil {
		s.logger.WithError(err).Error("Database health check failed")
		checks["database"] = "unavailable"
		healthy = false
	}
	if err := s.cache.Health(ctx); err != nil {
		s.logger.WithError(err).Error("Redis health check failed")
		checks["redis"] = "unavailable"
		healthy = false
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports that the process is serving
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
