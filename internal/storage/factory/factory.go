package factory

import (
	"fmt"
	"staydesk/internal/storage"
	"staydesk/internal/storage/memory"
	mongostore "staydesk/internal/storage/mongo"
	"staydesk/internal/storage/postgres"
	"staydesk/pkg/config"
)

func RetryPolicy(cfg *config.Config) storage.RetryPolicy {
	return storage.RetryPolicy{
		MaxRetries:    cfg.StorageMaxRetries,
		InitialDelay:  cfg.StorageBackoff,
		MaxDelay:      storage.DefaultMaxDelay,
		BackoffFactor: storage.DefaultBackoffFactor,
	}
}

// NewStore connects the backend named by cfg.StorageDriver. Connections are
// registered on cfg.Client so they are closed on shutdown.
func NewStore(cfg *config.Config) (storage.Store, error) {
	policy := RetryPolicy(cfg)

	switch cfg.StorageDriver {
	case config.StorageMongo:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		cfg.Log.Info("Using MongoDB storage", "database", cfg.MongoDatabaseName)
		return mongostore.New(cfg.Client.Mongo, cfg.MongoDatabaseName, mongostore.Options{
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			Retry:        policy,
		}), nil
	case config.StoragePostgres:
		if cfg.Client.Postgres == nil {
			cfg.SetPostgres()
		}
		cfg.Log.Info("Using PostgreSQL storage")
		return postgres.New(cfg.Client.Postgres, policy), nil
	case config.StorageMemory:
		cfg.Log.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
