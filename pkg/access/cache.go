package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blessedcoolant/InvokeAI/pkg/models"
	"github.com/redis/go-redis/v9"
)

// CachedChecker memoizes another checker's answers in Redis. Cache outages
// degrade to querying the inner checker directly.
type CachedChecker struct {
	client redis.UniversalClient
	inner  Checker
	kind   string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedChecker wraps inner with a Redis cache. Entries expire after ttl.
func NewCachedChecker(client redis.UniversalClient, inner Checker, kind string, ttl time.Duration, logger *slog.Logger) *CachedChecker {
	return &CachedChecker{
		client: client,
		inner:  inner,
		kind:   kind,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedChecker) Check(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf("invokeai:access:%s:%s", c.kind, id)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached == "1", nil
	}

	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("access cache read failed", "key", key, "error", err)
	}

	ok, err := c.inner.Check(ctx, id)
	if err != nil {
		return false, err
	}

	value := "0"
	if ok {
		value = "1"
	}

	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("access cache write failed", "key", key, "error", err)
	}

	return ok, nil
}

// NewCachedCheckers wraps each configured checker in checkers with a Redis
// cache. Nil entries stay nil.
func NewCachedCheckers(client redis.UniversalClient, checkers Checkers, ttl time.Duration, logger *slog.Logger) Checkers {
	wrap := func(inner Checker, kind string) Checker {
		if inner == nil {
			return nil
		}

		return NewCachedChecker(client, inner, kind, ttl, logger)
	}

	return Checkers{
		Images: wrap(checkers.Images, string(models.ResourceKindImage)),
		Boards: wrap(checkers.Boards, string(models.ResourceKindBoard)),
		Models: wrap(checkers.Models, string(models.ResourceKindModel)),
	}
}
