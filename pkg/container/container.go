package container

import (
	"context"
	"fmt"
	"time"

	"discount-campaigns-backend/internal/config"
	infraCache "discount-campaigns-backend/internal/infrastructure/cache"
	"discount-campaigns-backend/internal/infrastructure/database"
	"discount-campaigns-backend/pkg/cache"
	"discount-campaigns-backend/pkg/logger"

	catalogHandler "discount-campaigns-backend/internal/domains/catalog/handler"
	catalogRepo "discount-campaigns-backend/internal/domains/catalog/repository"
	promoHandler "discount-campaigns-backend/internal/domains/promotion/handler"
	promoRepo "discount-campaigns-backend/internal/domains/promotion/repository"
	promoService "discount-campaigns-backend/internal/domains/promotion/service"
)

// Container holds every dependency of the application. It is the root
// of the dependency graph; everything in it is a singleton built once
// at startup.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB // nil when the catalog source is memory
	Cache  cache.Cache          // nil when Redis is disabled

	ProductRepo   catalogRepo.ProductRepository
	PromotionRepo promoRepo.PromotionRepository

	PromotionService promoService.ServiceInterface

	CatalogHandler   *catalogHandler.CatalogHandler
	PromotionHandler *promoHandler.PromotionHandler

	redisCache *infraCache.RedisCache
}

// NewContainer builds the dependency graph in order:
// config → infrastructure → repositories → services → handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis is optional; the catalog works without it.
	if cfg.Redis.Enabled {
		redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redisCache = redisCache
		c.Cache = redisCache
		logger.Info("redis connected", map[string]interface{}{"host": cfg.Redis.Host})
	}

	// Promotion catalog source.
	switch cfg.Catalog.Source {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
		c.PromotionRepo = promoRepo.NewPostgresRepository(db.Pool)
		logger.Info("promotion catalog source: postgres", map[string]interface{}{"database": cfg.Database.Database})
	default:
		c.PromotionRepo = promoRepo.NewMemoryRepository()
		logger.Info("promotion catalog source: memory", nil)
	}

	if c.Cache != nil {
		ttl := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second
		c.PromotionRepo = promoRepo.NewCachedRepository(c.PromotionRepo, c.Cache, ttl)
	}

	c.ProductRepo = catalogRepo.NewMemoryRepository()

	c.PromotionService = promoService.NewEngine(c.PromotionRepo)

	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.ProductRepo)
	c.PromotionHandler = promoHandler.NewPromotionHandler(c.PromotionService)

	return c, nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.redisCache != nil {
		if err := c.redisCache.Close(); err != nil {
			logger.Error("failed to close redis client", err)
		}
	}
}
