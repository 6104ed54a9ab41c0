package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"compara-mercado/internal/ai"
	"compara-mercado/internal/config"
	"compara-mercado/internal/kvstore"
	"compara-mercado/internal/metrics"
	custommiddleware "compara-mercado/internal/middleware"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/service"
	"compara-mercado/internal/transport"
	"compara-mercado/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the server is built on
type Dependencies struct {
	Store       kvstore.Store
	Redis       *redis.Client // optional; required for rate limiting
	Generator   service.TextGenerator
	Transcriber ai.Transcriber
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  kvstore.Store
	redis  *redis.Client
	hub    *websocket.Hub
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	m := metrics.New()
	hub := websocket.NewHub(logger)

	generator := deps.Generator
	if generator == nil {
		generator = ai.Unavailable{}
	}
	transcriber := deps.Transcriber
	if transcriber == nil {
		transcriber = ai.NoTranscriber{}
	}

	// Initialize repositories
	catalogRepo, err := repository.NewCatalogRepository(ctx, deps.Store, logger, repository.CatalogOptions{
		LoadDelay: cfg.Catalog.LoadDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	listRepo := repository.NewShoppingListRepository(deps.Store, logger)
	settingsRepo := repository.NewSettingsRepository(deps.Store, logger)

	// Initialize services
	promotions := service.NewPromotionService(catalogRepo)
	catalogService := service.NewCatalogService(catalogRepo, promotions, hub, m, logger)
	listService, err := service.NewShoppingListService(ctx, listRepo, catalogRepo, hub, m, logger)
	if err != nil {
		return nil, err
	}
	advisorService := service.NewAdvisorService(listService, catalogRepo, generator, m, logger)
	homeService := service.NewHomeService(promotions)
	adminService := service.NewAdminService(cfg.Admin.PasswordHash, cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute)

	if cfg.Admin.PasswordHash == "" || cfg.JWT.Secret == "" {
		logger.Warn("Admin routes disabled: ADMIN_PASSWORD_HASH or JWT_SECRET not set")
	}

	// Create router
	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger, m))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	// Health check and metrics
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", m.Handler())

	// Websockets are not rate limited or compressed
	transport.NewVoiceHandler(transcriber, catalogService, cfg.Server.AllowedOrigins, m, logger).RegisterRoutes(router)
	router.Get("/ws/events", websocket.HandleEvents(hub, cfg.Server.AllowedOrigins))

	router.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		if cfg.RateLimit.Enabled {
			if deps.Redis == nil {
				logger.Warn("Rate limiting enabled but redis is not available, skipping")
			} else {
				r.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
					RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
					Window:            cfg.RateLimit.Window,
					KeyPrefix:         cfg.Redis.KeyPrefix,
				}, logger))
			}
		}

		// Register routes
		transport.NewCatalogHandler(catalogService, homeService, logger).RegisterRoutes(r)
		transport.NewShoppingListHandler(listService, advisorService, logger).RegisterRoutes(r)
		transport.NewSettingsHandler(settingsRepo, hub, logger).RegisterRoutes(r)
		transport.NewAdminHandler(adminService, catalogService, logger).
			RegisterRoutes(r, custommiddleware.AuthMiddleware(adminService, logger))
	})

	return &Server{
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:     router,
			IdleTimeout: time.Minute,
			ReadTimeout: 10 * time.Second,
			// No WriteTimeout: websocket sessions and AI calls are long-lived.
		},
		config: cfg,
		logger: logger,
		store:  deps.Store,
		redis:  deps.Redis,
		hub:    hub,
	}, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
