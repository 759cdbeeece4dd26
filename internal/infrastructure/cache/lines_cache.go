package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/capperdesk/grader/internal/domain/game"
	platformcache "github.com/capperdesk/grader/internal/platform/cache"
	"github.com/capperdesk/grader/internal/platform/logging"
)

const linesKeyPrefix = "grader:lines:"

// RedisLinesCache shares fetched closing lines across service instances
// so overlapping grading runs hit the odds feed once per game. Cache
// failures are treated as misses.
type RedisLinesCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisLinesCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisLinesCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLinesCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisLinesCache) Get(ctx context.Context, gameID string) (*game.ClosingLines, bool) {
	data, err := c.client.Get(ctx, linesKeyPrefix+gameID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "lines cache read failed", "gameId", gameID, "error", err)
		}
		return nil, false
	}

	var lines game.ClosingLines
	if err := sonic.Unmarshal(data, &lines); err != nil {
		c.logger.WarnContext(ctx, "lines cache payload corrupt", "gameId", gameID, "error", err)
		return nil, false
	}
	return &lines, true
}

func (c *RedisLinesCache) Set(ctx context.Context, gameID string, lines *game.ClosingLines) {
	if lines == nil {
		return
	}

	data, err := sonic.Marshal(lines)
	if err != nil {
		c.logger.WarnContext(ctx, "lines cache encode failed", "gameId", gameID, "error", err)
		return
	}
	if err := c.client.Set(ctx, linesKeyPrefix+gameID, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "lines cache write failed", "gameId", gameID, "error", err)
	}
}

// MemoryLinesCache is the single-instance fallback used when Redis is
// not configured.
type MemoryLinesCache struct {
	store *platformcache.Store
}

func NewMemoryLinesCache(ttl time.Duration) *MemoryLinesCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryLinesCache{store: platformcache.NewStore(ttl)}
}

func (c *MemoryLinesCache) Get(ctx context.Context, gameID string) (*game.ClosingLines, bool) {
	value, ok := c.store.Get(ctx, linesKeyPrefix+gameID)
	if !ok {
		return nil, false
	}
	lines, ok := value.(*game.ClosingLines)
	return lines, ok
}

func (c *MemoryLinesCache) Set(ctx context.Context, gameID string, lines *game.ClosingLines) {
	if lines == nil {
		return
	}
	c.store.Set(ctx, linesKeyPrefix+gameID, lines)
}
