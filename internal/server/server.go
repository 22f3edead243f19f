package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/offers"
	"storefront/internal/payments"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/transport"
	"storefront/internal/wizard"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports the state of a backing service
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	*http.Server
	config     *config.Config
	logger     *zap.Logger
	db         *sql.DB
	redis      *redis.Client
	dispatcher *payments.Dispatcher
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *sql.DB, health HealthChecker, redisClient *redis.Client) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(metrics.Middleware)

	// Anonymous callers are limited per IP here; authenticated routes add a
	// per-creator window behind the auth middleware below
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit",
	}, logger)
	router.Use(rateLimit)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := map[string]string{"status": "ok"}
		if health != nil {
			for k, v := range health.Health() {
				report["db_"+k] = v
			}
			if report["db_status"] == "down" {
				status = http.StatusServiceUnavailable
				report["status"] = "degraded"
			}
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			report["redis"] = "down"
			status = http.StatusServiceUnavailable
			report["status"] = "degraded"
		} else {
			report["redis"] = "up"
		}
		custommiddleware.RespondWithJSON(w, status, report)
	})
	router.Handle("/metrics", metrics.Handler())

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)

	// Payment sync runs only when an endpoint is configured
	var (
		dispatcher *payments.Dispatcher
		syncer     service.SyncDispatcher
	)
	if cfg.Payments.SyncURL != "" {
		dispatcher = payments.NewDispatcher(
			payments.NewHTTPSyncer(cfg.Payments.SyncURL, cfg.Payments.SyncSecret, cfg.Payments.Timeout),
			payments.DispatcherConfig{
				QueueSize:     cfg.Payments.QueueSize,
				RatePerSecond: cfg.Payments.RatePerSecond,
				Timeout:       cfg.Payments.Timeout,
			},
			logger,
		)
		go dispatcher.LogErrors()
		syncer = dispatcher
	} else {
		logger.Warn("PAYMENTS_SYNC_URL not set, payment sync disabled")
	}

	uploads, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to configure storage: %w", err)
	}
	logger.Info("Storage configured", zap.String("driver", cfg.Storage.Driver), zap.String("backend", fmt.Sprint(uploads)))
	if local, ok := uploads.(*storage.Local); ok {
		router.Handle(local.URLPrefix+"/*", http.StripPrefix(local.URLPrefix, http.FileServer(http.Dir(local.BaseDir))))
	}

	// Initialize services
	productService := service.NewProductService(productRepo, creatorRepo, syncer, cfg.Payments.Currency, logger)

	// Create auth middleware
	verifyToken := custommiddleware.AuthMiddleware(cfg.Auth.JWTSecret, logger)
	authMiddleware := func(next http.Handler) http.Handler {
		return verifyToken(rateLimit(next))
	}
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Initialize handlers and register routes
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewWizardHandler(wizard.NewRedisStore(redisClient, cfg.Wizard.SessionTTL), productService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewUploadHandler(uploads, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCheckoutHandler(logger).RegisterRoutes(router)
	transport.NewOfferHandler(offers.NewStore(), productService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:     cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		dispatcher: dispatcher,
	}

	return server, nil
}

// Close drains pending payment syncs, then releases Redis and the database
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.dispatcher.Close(ctx); err != nil {
			s.logger.Warn("Pending payment syncs dropped", zap.Error(err))
		}
		cancel()
	}

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
