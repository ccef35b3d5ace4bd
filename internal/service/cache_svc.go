package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Terminal jobs change only through remediation, which invalidates
	// explicitly, so they can be cached for a while.
	JobCacheTTL      = 5 * time.Minute
	CommentsCacheTTL = 2 * time.Minute
)

// CacheService provides a Redis cache-aside layer for job and comment-listing
// lookups.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, the client stays nil and cache operations become no-ops.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetJob retrieves a cached job response. Keys are scoped per user so a
// cached entry can never be served across an ownership boundary. Returns nil
// if not cached or the cache is disabled.
func (c *CacheService) GetJob(ctx context.Context, jobID, userID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, jobKey(jobID, userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetJob stores a job response in cache.
func (c *CacheService) SetJob(ctx context.Context, jobID, userID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, jobKey(jobID, userID), b, JobCacheTTL).Err()
}

// InvalidateJob removes a job and its comment listings from cache (called
// after remediation mutates the job).
func (c *CacheService) InvalidateJob(ctx context.Context, jobID, userID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, jobKey(jobID, userID), commentsKey(jobID, userID)).Err()
}

// GetJobComments retrieves a cached comment listing. Returns nil on miss.
func (c *CacheService) GetJobComments(ctx context.Context, jobID, userID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, commentsKey(jobID, userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetJobComments stores a comment listing in cache.
func (c *CacheService) SetJobComments(ctx context.Context, jobID, userID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, commentsKey(jobID, userID), b, CommentsCacheTTL).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func jobKey(jobID, userID string) string {
	return fmt.Sprintf("job:%s:u:%s", jobID, userID)
}

func commentsKey(jobID, userID string) string {
	return fmt.Sprintf("job:%s:u:%s:comments", jobID, userID)
}
