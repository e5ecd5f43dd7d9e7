package container

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/kidsactivitytracker/backend/internal/cache"
	"github.com/kidsactivitytracker/backend/internal/config"
	"github.com/kidsactivitytracker/backend/internal/delivery/http"
	"github.com/kidsactivitytracker/backend/internal/delivery/http/handler"
	"github.com/kidsactivitytracker/backend/internal/delivery/http/middleware"
	"github.com/kidsactivitytracker/backend/internal/infrastructure/catalog"
	"github.com/kidsactivitytracker/backend/internal/infrastructure/database"
	"github.com/kidsactivitytracker/backend/internal/infrastructure/server"
	"github.com/kidsactivitytracker/backend/internal/repository/postgres"
	"github.com/kidsactivitytracker/backend/internal/usecase/children"
	"github.com/kidsactivitytracker/backend/internal/usecase/search"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis. The preference cache is optional: a dead Redis
	// means every read goes to Postgres, not a dead service.
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, preference cache disabled", "error", err)
		redisClient = nil
	}

	// Initialize external catalog client
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// Initialize repositories
	childRepo := postgres.NewChildRepository(db)

	var prefCache *cache.PreferenceCache
	if redisClient != nil {
		prefCache = cache.NewPreferenceCache(redisClient)
	}

	// Initialize use cases
	childrenUseCase := children.NewChildrenUseCase(
		childRepo,
		childrenCache(prefCache),
		logger,
	)

	searchUseCase := search.NewSearchUseCase(
		childRepo,
		searchCache(prefCache),
		catalogClient,
		logger,
	)

	// Initialize handlers
	childrenHandler := handler.NewChildrenHandler(childrenUseCase)
	searchHandler := handler.NewSearchHandler(searchUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Initialize router
	router := http.NewRouter(
		childrenHandler,
		searchHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter, logger)

	return &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
	}, nil
}

// childrenCache keeps a typed nil out of the use case's interface value.
func childrenCache(c *cache.PreferenceCache) children.PreferenceCache {
	if c == nil {
		return nil
	}
	return c
}

func searchCache(c *cache.PreferenceCache) search.ProfileCache {
	if c == nil {
		return nil
	}
	return c
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis: %w", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
