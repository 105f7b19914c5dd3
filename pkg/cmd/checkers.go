package cmd

import (
	"fmt"
	"log/slog"

	"github.com/blessedcoolant/InvokeAI/pkg/access"
	"github.com/blessedcoolant/InvokeAI/pkg/config"
	"github.com/redis/go-redis/v9"
)

// NewCheckers builds the resource access checkers from service config: the
// catalog client, optionally fronted by a redis cache. Without a catalog
// URL resource access checks are disabled.
func NewCheckers(cfg config.ServiceConfig, logger *slog.Logger) access.Checkers {
	if cfg.Catalog.BaseURL == "" {
		return access.Checkers{}
	}

	checkers := access.NewCatalog(cfg.Catalog.BaseURL, logger).Checkers()

	if cfg.AccessCache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.AccessCache.RedisURL)
		if err != nil {
			panic(fmt.Errorf("failed to parse redis URL: %w", err))
		}

		checkers = access.NewCachedCheckers(redis.NewClient(opts), checkers, cfg.AccessCache.TTL(), logger)
	}

	return checkers
}
