package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/database"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New wires the services over db and builds the router. redisClient and
// s3cfg are optional: without Redis the rate limiters count in memory and
// without S3 recipe images are written below cfg.MediaDir.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	st := store.NewGormStore(db)

	var storage service.ImageStorage
	if s3cfg != nil {
		storage = service.NewS3ImageStorage(s3cfg, service.DefaultBreakerSettings())
	} else {
		storage = service.NewLocalImageStorage(cfg.MediaDir, cfg.MediaBaseURL)
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}
	logging.Info().Str("backend", storage.Backend()).Msg("recipe image storage configured")

	api.RegisterRoutes(router, api.Dependencies{
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL),
		Users:         service.NewUserService(db, st, cfg.PageSize),
		Catalog:       service.NewCatalogService(db),
		Recipes:       service.NewRecipeService(db, st, service.NewImageService(storage)),
		Filter:        service.NewFilterEvaluator(st, cfg.PageSize),
		Members:       service.NewMembershipService(st),
		Shopping:      service.NewShoppingListAggregator(st),
		CreateLimiter: middleware.NewRecipeCreationRateLimiter(redisClient),
		ToggleLimiter: middleware.NewToggleRateLimiter(redisClient),
		PublicBaseURL: cfg.PublicBaseURL,
	})

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  redisClient,
	}
	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// health reports database and Redis reachability. Only the database is
// required; a Redis outage degrades rate limiting to in-process counters.
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}

	if err := database.HealthCheck(ctx, s.db); err != nil {
		logging.Error().Err(err).Msg("database health check failed")
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["database"] = "down"
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			logging.Warn().Err(err).Msg("redis health check failed")
			body["redis"] = "down"
		} else {
			body["redis"] = "ok"
		}
	}

	c.JSON(status, body)
}

// Start listens on cfg.Addr() and blocks until the server stops
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
