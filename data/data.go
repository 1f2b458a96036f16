// Package data manages the MongoDB and redis connections and exposes the
// repositories built on them.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/examhub-dev/examhub/config"
	"github.com/examhub-dev/examhub/data/repository"
	"github.com/examhub-dev/examhub/logging/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client *mongo.Client
	db     *mongo.Database
	rc     *redis.Client

	TaskRepo repository.TaskRepository
	UserRepo repository.UserRepository
}

// New creates a new Data instance from configuration. Redis is optional; a
// missing address leaves the ephemeral store disabled.
func New(cfg *config.Data, log *logger.Logger) (*Data, error) {
	if cfg == nil || cfg.MongoDB == nil || cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("mongodb configuration is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := cfg.MongoDB.Database
	if dbName == "" {
		dbName = "examhub"
	}
	db := client.Database(dbName)

	log.Info(ctx, "Connected to MongoDB", "database", dbName)

	var rc *redis.Client
	if cfg.Redis != nil && cfg.Redis.Addr != "" {
		rc = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Warn(ctx, "redis unavailable, ephemeral store disabled", "error", err)
			rc = nil
		}
	}

	return &Data{
		client:   client,
		db:       db,
		rc:       rc,
		TaskRepo: repository.NewTaskRepository(db, log),
		UserRepo: repository.NewUserRepository(db, log),
	}, nil
}

// Close closes the MongoDB and redis connections.
func (d *Data) Close() error {
	if d.rc != nil {
		_ = d.rc.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// DB returns the MongoDB database instance.
func (d *Data) DB() *mongo.Database {
	return d.db
}

// Redis returns the redis client, nil when disabled.
func (d *Data) Redis() *redis.Client {
	return d.rc
}
