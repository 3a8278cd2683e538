package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	VideoCacheTTL   = 5 * time.Minute
	ChannelCacheTTL = 15 * time.Minute
	FeedCacheTTL    = 5 * time.Minute
)

// CacheService provides a Redis cache-aside layer for video, channel and
// feed lookups. With a nil client every operation is a no-op miss.
type CacheService struct {
	rdb     *redis.Client
	logger  zerolog.Logger
	observe func(hit bool)
}

// NewCacheService connects to Redis. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (caching disabled).
func NewCacheService(redisURL string, logger zerolog.Logger) *CacheService {
	logger = logger.With().Str("component", "cache").Logger()
	if redisURL == "" {
		logger.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{logger: logger}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{logger: logger}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		rdb.Close()
		return &CacheService{logger: logger}
	}

	logger.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, logger: logger}
}

// NewCacheServiceWithClient wraps an existing client. A nil client disables
// caching.
func NewCacheServiceWithClient(rdb *redis.Client, logger zerolog.Logger) *CacheService {
	return &CacheService{rdb: rdb, logger: logger.With().Str("component", "cache").Logger()}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// SetObserver registers a callback invoked on every cache lookup.
func (c *CacheService) SetObserver(fn func(hit bool)) {
	if c != nil {
		c.observe = fn
	}
}

func (c *CacheService) record(hit bool) {
	if c.observe != nil {
		c.observe(hit)
	}
}

// getJSON loads key into dst. It reports false on a miss, when caching is
// disabled, or when the entry cannot be decoded.
func (c *CacheService) getJSON(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		c.record(false)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		c.record(false)
		return false
	}
	c.record(true)
	return true
}

func (c *CacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (c *CacheService) del(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}

// GetVideo loads a cached video into dst.
func (c *CacheService) GetVideo(ctx context.Context, videoID string, dst any) bool {
	return c.getJSON(ctx, videoKey(videoID), dst)
}

// SetVideo stores a video response in cache.
func (c *CacheService) SetVideo(ctx context.Context, videoID string, v any) {
	c.setJSON(ctx, videoKey(videoID), v, VideoCacheTTL)
}

// InvalidateVideo removes videos from cache.
func (c *CacheService) InvalidateVideo(ctx context.Context, videoIDs ...string) {
	keys := make([]string, 0, len(videoIDs))
	for _, id := range videoIDs {
		keys = append(keys, videoKey(id))
	}
	c.del(ctx, keys...)
}

// GetChannel loads a cached channel into dst.
func (c *CacheService) GetChannel(ctx context.Context, channelID string, dst any) bool {
	return c.getJSON(ctx, channelKey(channelID), dst)
}

// SetChannel stores a channel response in cache.
func (c *CacheService) SetChannel(ctx context.Context, channelID string, v any) {
	c.setJSON(ctx, channelKey(channelID), v, ChannelCacheTTL)
}

// InvalidateChannel removes a channel from cache.
func (c *CacheService) InvalidateChannel(ctx context.Context, channelID string) {
	c.del(ctx, channelKey(channelID))
}

// GetFeed loads a cached feed page into dst.
func (c *CacheService) GetFeed(ctx context.Context, name string, dst any) bool {
	return c.getJSON(ctx, feedKey(name), dst)
}

// SetFeed stores a feed page in cache.
func (c *CacheService) SetFeed(ctx context.Context, name string, v any) {
	c.setJSON(ctx, feedKey(name), v, FeedCacheTTL)
}

// Ping checks Redis connectivity. It returns nil when caching is disabled.
func (c *CacheService) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func videoKey(videoID string) string {
	return fmt.Sprintf("video:%s", videoID)
}

func channelKey(channelID string) string {
	return fmt.Sprintf("channel:%s", channelID)
}

func feedKey(name string) string {
	return fmt.Sprintf("feed:%s", name)
}
