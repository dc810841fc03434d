// Package di wires the application together: logger, collaborator
// clients, and one cache-backed collection per resource type.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"promptbay-backend/application/ports"
	"promptbay-backend/application/services"
	"promptbay-backend/domain/catalog"
	"promptbay-backend/infrastructure/cache"
	"promptbay-backend/infrastructure/config"
	"promptbay-backend/infrastructure/persistence/dynamodb"
)

// Container holds the application's wired dependencies.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	CacheStore ports.CacheStore

	Prompts *services.Collection
	Tools   *services.Collection

	redisClient *redis.Client
	memoryStore *cache.MemoryStore
}

// NewContainer builds the dependency graph.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger}

	if cfg.RedisAddr != "" {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.CacheStore = cache.NewRedisStore(c.redisClient)
	} else {
		logger.Warn("no redis address configured, using in-memory cache store")
		c.memoryStore = cache.NewMemoryStore()
		c.CacheStore = c.memoryStore
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	ddb := awsdynamodb.NewFromConfig(awsCfg)

	collectionCfg := services.CollectionConfig{
		StalenessBudget: cfg.SnapshotStaleness(),
		ResultTTL:       cfg.ResultCacheTTL(),
		DocumentTTL:     cfg.DocumentCacheTTL(),
	}

	c.Prompts = services.NewCollection(
		catalog.Resource{Name: "prompts"},
		dynamodb.NewDocumentStore(ddb, cfg.PromptsTable, logger),
		c.CacheStore,
		collectionCfg,
		logger,
	)
	c.Tools = services.NewCollection(
		catalog.Resource{Name: "tools"},
		dynamodb.NewDocumentStore(ddb, cfg.ToolsTable, logger),
		c.CacheStore,
		collectionCfg,
		logger,
	)

	return c, nil
}

// Warm loads the initial snapshots so the first request does not pay
// for a full scan. Failures are logged, not fatal; reads refresh
// lazily.
func (c *Container) Warm(ctx context.Context) {
	for _, coll := range []*services.Collection{c.Prompts, c.Tools} {
		if err := coll.Warm(ctx); err != nil {
			c.Logger.Warn("snapshot warm-up failed",
				zap.String("resource", coll.Resource().Name),
				zap.Error(err),
			)
		}
	}
}

// Ready reports whether the shared cache store is reachable.
func (c *Container) Ready(ctx context.Context) error {
	if rs, ok := c.CacheStore.(*cache.RedisStore); ok {
		return rs.Ping(ctx)
	}
	return nil
}

// Shutdown releases held resources.
func (c *Container) Shutdown() error {
	var firstErr error
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if c.memoryStore != nil {
		if err := c.memoryStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}
