package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cartcookie"
	"storefront/internal/commerce"
	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"
	"storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, commerceClient commerce.Client) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	renderer, err := view.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// Initialize repositories
	contentRepo := repository.NewContentRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	// Initialize services
	catalogService := service.NewCatalogService(contentRepo, productRepo, service.CatalogOptions{
		PlaceholderImage: cfg.Storefront.PlaceholderImage,
		ThumbnailOption:  cfg.Storefront.ThumbnailOption,
		PostsToShow:      cfg.Storefront.PostsToShow,
	}, logger)
	cartService := service.NewCartService(commerceClient, logger)

	// Initialize handlers
	cookies := cartcookie.New([]byte(cfg.CartCookie.Secret), cfg.CartCookie.Name, cfg.CartCookie.Secure)
	handler := transport.NewStorefrontHandler(catalogService, cartService, cookies, renderer, cfg.Storefront.PlaceholderImage, logger)

	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(middleware.StripSlashes)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger, handler.RenderError))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"database": health})
	})

	addToCartLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "add_to_cart",
		Render:            handler.RenderError,
	}, logger)
	apiCORS := custommiddleware.CORSMiddleware(cfg.Storefront.AllowedOrigins, cfg.IsDevelopment())

	// Register routes
	handler.RegisterRoutes(router, addToCartLimiter, apiCORS)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
