package main

import (
	"context"
	"time"

	mongoMigration "staydesk/internal/migrations/mongo"
	postgresMigration "staydesk/internal/migrations/postgres"
	"staydesk/pkg/config"
)

const JobName = "hotel-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "storage_driver", cfg.StorageDriver)
	if err := migrate(ctx, cfg); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cancel()
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		cfg.SetMongo()
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
	case config.StoragePostgres:
		cfg.SetPostgres()
		return postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	default:
		cfg.Log.Info("Nothing to migrate", "storage_driver", cfg.StorageDriver)
		return nil
	}
}
