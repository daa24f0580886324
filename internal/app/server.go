// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace_backend/internal/auth"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/delivery"
	"marketplace_backend/internal/domain"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/metrics"
	"marketplace_backend/internal/middleware"
	platformElasticsearch "marketplace_backend/internal/platform/elasticsearch"
	"marketplace_backend/internal/product"
	"marketplace_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// ESClient is nil when the catalog index is disabled.
	ESClient *platformElasticsearch.ESClientWrapper

	catalogSyncJob *jobs.CatalogSyncJob
}

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	User     *user.Handler
	Product  *product.Handler
	Catalog  *catalog.Handler
	Auth     *auth.Handler
	Delivery *delivery.Handler
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authenticator *middleware.Authenticator,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	handlers Handlers,
	catalogSyncJob *jobs.CatalogSyncJob,
	esClient *platformElasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	router.Use(middleware.Preflight())
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(m))
	}

	router.NoRoute(func(c *gin.Context) {
		common.RespondWithError(c, common.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		common.RespondWithError(c, common.ErrMethodNotAllowed)
	})

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Marketplace API is healthy!"})
	})
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := router.Group("/api")
	registerRoutes(api, authenticator, rateLimiter, handlers)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		ESClient:       esClient,
		catalogSyncJob: catalogSyncJob,
	}, nil
}

// registerRoutes mounts every API module. The rate limiter runs after
// authentication so buckets are keyed by account.
func registerRoutes(api *gin.RouterGroup, authenticator *middleware.Authenticator, rateLimiter *middleware.RateLimiter, h Handlers) {
	tokenMW := authenticator.TokenMiddleware()
	authMW := authenticator.AuthMiddleware()
	limit := rateLimiter.Middleware()

	h.Auth.RegisterRoutes(api, tokenMW, limit)
	h.User.RegisterRoutes(api,
		[]gin.HandlerFunc{tokenMW, limit},
		[]gin.HandlerFunc{authMW, limit},
	)
	h.Product.RegisterRoutes(api, authMW, middleware.RoleAuthMiddleware(domain.RoleVendor), limit)
	h.Catalog.RegisterRoutes(api, authMW, middleware.RoleAuthMiddleware(domain.RoleBuyer, domain.RoleRider), limit)
	h.Delivery.RegisterRoutes(api, authMW, middleware.RoleAuthMiddleware(domain.RoleRider), limit)
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", common.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{"Content-Length", common.RequestIDHeader}
	corsCfg.AllowCredentials = false
	corsCfg.OptionsResponseStatusCode = http.StatusOK
	return corsCfg
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start ensures the catalog index, starts the sync job and serves HTTP until
// Shutdown is called.
func (s *Server) Start() error {
	if s.ESClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := platformElasticsearch.CreateProductsIndexIfNotExists(ctx, s.ESClient, s.logger)
		cancel()
		if err != nil {
			s.logger.Error("Failed to create Elasticsearch products index; catalog search will use the store fallback until it exists", zap.Error(err))
		}
	} else {
		s.logger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	if s.catalogSyncJob != nil {
		if err := s.catalogSyncJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start catalog sync job", zap.Error(err))
		}
	} else {
		s.logger.Info("Catalog sync job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
		zap.String("document_store", s.cfg.DocumentStore),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the sync job and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.catalogSyncJob != nil {
		s.catalogSyncJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
