// Package bootstrap wires the process-level dependencies shared by the server
// and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"socialvim/internal/cache"
	"socialvim/internal/config"
	"socialvim/internal/database"
	"socialvim/internal/middleware"
	"socialvim/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed loads the demo data set after the schema is in place. A database
	// that already has users is left untouched.
	Seed bool
}

// InitRuntime connects to the database (applying the schema per
// DB_SCHEMA_MODE) and Redis, then optionally seeds. The Redis client is nil
// when Redis is unreachable; rate limiting then fails open.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil {
		middleware.Logger.Warn("redis unavailable, request rate limits fail open", slog.String("redis_url", cfg.RedisURL))
	}

	if opts.Seed {
		res, err := seed.Seed(ctx, db, seed.Options{})
		if err != nil {
			_ = database.Close(db)
			if r != nil {
				_ = r.Close()
			}
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		if !res.Skipped {
			middleware.Logger.Info("demo data loaded", slog.Int("users", res.Users), slog.Int("posts", res.Posts))
		}
	}

	return db, r, nil
}
