package server

import (
	"context"
	"fmt"

	"compara-mercado/internal/config"
	"compara-mercado/internal/database"
	"compara-mercado/internal/kvstore"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// NewRedisClient connects to redis and checks it is reachable
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// OpenStore creates the key-value store selected by cfg.Storage.Driver.
// The redis driver uses redisClient, connecting one when it is nil.
func OpenStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (kvstore.Store, *redis.Client, error) {
	switch cfg.Storage.Driver {
	case "", StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return kvstore.NewMemoryStore(), redisClient, nil

	case StorageSQLite:
		return openSQLStore(ctx, database.DriverSQLite, database.SQLiteDSN(cfg.Storage.SQLitePath), redisClient, logger)

	case StoragePostgres:
		return openSQLStore(ctx, database.DriverPostgres, database.PostgresDSN(cfg.Database), redisClient, logger)

	case StorageRedis:
		if redisClient == nil {
			client, err := NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				return nil, nil, err
			}
			redisClient = client
		}
		return kvstore.NewRedisStore(redisClient, cfg.Redis.KeyPrefix), redisClient, nil

	default:
		return nil, redisClient, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openSQLStore(ctx context.Context, driver database.Driver, dsn string, redisClient *redis.Client, logger *zap.Logger) (kvstore.Store, *redis.Client, error) {
	db, err := database.Open(ctx, driver, dsn, logger)
	if err != nil {
		return nil, redisClient, err
	}
	logger.Info("Database health check", zap.Any("health", database.Health(ctx, db)))

	store, err := kvstore.NewSQLStore(db, driver.Dialect())
	if err != nil {
		db.Close()
		return nil, redisClient, err
	}
	return store, redisClient, nil
}
