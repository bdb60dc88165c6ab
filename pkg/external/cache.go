package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/effect-crf-validators/internal/domain"
)

const eligibilityKeyPrefix = "crf:eligibility"

// CacheClient wraps a Redis client with the shared eligibility cache tier.
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client and checks the connection.
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	if config.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opts := &redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: config.DefaultTTL,
	}, nil
}

// CachedEligibility is the JSON envelope stored in Redis.
type CachedEligibility struct {
	SubjectIdentifier   string    `json:"subject_identifier"`
	EligibilityDatetime time.Time `json:"eligibility_datetime"`
	CachedAt            time.Time `json:"cached_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// GetEligibility returns the cached eligibility datetime of subject. found
// is false on a miss; corrupted or stale entries are removed and reported
// as misses.
func (c *CacheClient) GetEligibility(ctx context.Context, subject string) (time.Time, bool, error) {
	key := eligibilityKey(subject)

	val, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading eligibility cache: %w", err)
	}

	var cached CachedEligibility
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return time.Time{}, false, nil
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return time.Time{}, false, nil
	}

	return cached.EligibilityDatetime, true, nil
}

// SetEligibility stores the eligibility datetime of subject. A zero ttl
// uses the client default.
func (c *CacheClient) SetEligibility(ctx context.Context, subject string, eligibility time.Time, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	jsonData, err := json.Marshal(CachedEligibility{
		SubjectIdentifier:   subject,
		EligibilityDatetime: eligibility,
		CachedAt:            now,
		ExpiresAt:           now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility: %w", err)
	}

	return c.redis.Set(ctx, eligibilityKey(subject), jsonData, ttl).Err()
}

// InvalidateSubject removes the cached entry of subject.
func (c *CacheClient) InvalidateSubject(ctx context.Context, subject string) error {
	return c.redis.Del(ctx, eligibilityKey(subject)).Err()
}

// Ping checks Redis connectivity
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

func eligibilityKey(subject string) string {
	return fmt.Sprintf("%s:%s", eligibilityKeyPrefix, subject)
}
