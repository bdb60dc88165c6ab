package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/effect-crf-validators/internal/domain"
)

// EligibilityCache is the shared second cache tier, implemented by
// external.CacheClient.
type EligibilityCache interface {
	GetEligibility(ctx context.Context, subject string) (time.Time, bool, error)
	SetEligibility(ctx context.Context, subject string, eligibility time.Time, ttl time.Duration) error
	InvalidateSubject(ctx context.Context, subject string) error
}

// CachedEligibilityResolver implements domain.EligibilityProvider with
// multi-level caching in front of the screening source.
type CachedEligibilityResolver struct {
	source domain.EligibilityProvider

	// Multi-level caching
	memoryCache *lru.Cache[string, *cacheEntry] // Tier 1: in-process LRU
	redisCache  EligibilityCache                // Tier 2: optional, shared across instances

	memoryCacheTTL time.Duration
	redisCacheTTL  time.Duration

	logger  *logrus.Logger
	stats   *CacheStats
	statsMu sync.RWMutex
}

// CacheStats represents cache performance statistics
type CacheStats struct {
	MemoryHits    int64     `json:"memory_hits"`
	MemoryMisses  int64     `json:"memory_misses"`
	RedisHits     int64     `json:"redis_hits"`
	RedisMisses   int64     `json:"redis_misses"`
	SourceCalls   int64     `json:"source_calls"`
	TotalRequests int64     `json:"total_requests"`
	ErrorCount    int64     `json:"error_count"`
	LastReset     time.Time `json:"last_reset"`
}

// EligibilityResolverConfig represents configuration for the resolver
type EligibilityResolverConfig struct {
	MemoryCacheTTL time.Duration `json:"memory_cache_ttl"`
	RedisCacheTTL  time.Duration `json:"redis_cache_ttl"`
	MaxMemorySize  int           `json:"max_memory_size"`
}

// NewCachedEligibilityResolver creates a new cached resolver. redisCache may
// be nil to run with the memory tier only.
func NewCachedEligibilityResolver(
	config EligibilityResolverConfig,
	source domain.EligibilityProvider,
	redisCache EligibilityCache,
	logger *logrus.Logger,
) (*CachedEligibilityResolver, error) {
	if config.MemoryCacheTTL == 0 {
		config.MemoryCacheTTL = 15 * time.Minute
	}
	if config.RedisCacheTTL == 0 {
		config.RedisCacheTTL = 24 * time.Hour
	}
	if config.MaxMemorySize == 0 {
		config.MaxMemorySize = 1000
	}

	memoryCache, err := lru.New[string, *cacheEntry](config.MaxMemorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &CachedEligibilityResolver{
		source:         source,
		memoryCache:    memoryCache,
		redisCache:     redisCache,
		memoryCacheTTL: config.MemoryCacheTTL,
		redisCacheTTL:  config.RedisCacheTTL,
		logger:         logger,
		stats: &CacheStats{
			LastReset: time.Now(),
		},
	}, nil
}

// EligibilityDate resolves the eligibility datetime of subject, consulting
// the memory tier, then Redis, then the source.
func (r *CachedEligibilityResolver) EligibilityDate(ctx context.Context, subject string) (time.Time, error) {
	r.incrementStat("total_requests")

	subject = normalizeSubject(subject)
	if subject == "" {
		r.incrementStat("error_count")
		return time.Time{}, fmt.Errorf("subject identifier cannot be empty")
	}

	if eligibility, ok := r.getFromMemoryCache(subject); ok {
		r.incrementStat("memory_hits")
		r.logger.WithFields(logrus.Fields{
			"subject":    subject,
			"cache_tier": "memory",
		}).Debug("Cache hit in memory")
		return eligibility, nil
	}
	r.incrementStat("memory_misses")

	if eligibility, ok := r.getFromRedisCache(ctx, subject); ok {
		r.incrementStat("redis_hits")
		r.logger.WithFields(logrus.Fields{
			"subject":    subject,
			"cache_tier": "redis",
		}).Debug("Cache hit in Redis")

		r.setInMemoryCache(subject, eligibility)
		return eligibility, nil
	}
	r.incrementStat("redis_misses")

	r.incrementStat("source_calls")
	eligibility, err := r.source.EligibilityDate(ctx, subject)
	if err != nil {
		r.incrementStat("error_count")
		return time.Time{}, fmt.Errorf("resolving eligibility for %s: %w", subject, err)
	}

	r.setInMemoryCache(subject, eligibility)
	r.setInRedisCache(ctx, subject, eligibility)

	r.logger.WithField("subject", subject).Debug("Resolved eligibility from source")

	return eligibility, nil
}

// InvalidateCache drops subject from both tiers.
func (r *CachedEligibilityResolver) InvalidateCache(ctx context.Context, subject string) error {
	subject = normalizeSubject(subject)
	if subject == "" {
		return fmt.Errorf("subject identifier cannot be empty")
	}

	r.memoryCache.Remove(subject)
	if r.redisCache != nil {
		if err := r.redisCache.InvalidateSubject(ctx, subject); err != nil {
			return fmt.Errorf("invalidating redis entry: %w", err)
		}
	}

	r.logger.WithField("subject", subject).Info("Invalidated eligibility cache for subject")
	return nil
}

// GetCacheStats returns cache performance statistics
func (r *CachedEligibilityResolver) GetCacheStats() CacheStats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()

	return *r.stats
}

func (r *CachedEligibilityResolver) getFromMemoryCache(subject string) (time.Time, bool) {
	if entry, ok := r.memoryCache.Get(subject); ok {
		if !entry.isExpired() {
			return entry.eligibility, true
		}
		r.memoryCache.Remove(subject)
	}
	return time.Time{}, false
}

func (r *CachedEligibilityResolver) getFromRedisCache(ctx context.Context, subject string) (time.Time, bool) {
	if r.redisCache == nil {
		return time.Time{}, false
	}
	eligibility, found, err := r.redisCache.GetEligibility(ctx, subject)
	if err != nil {
		// A broken shared tier degrades to a miss.
		r.logger.WithError(err).WithField("subject", subject).Warn("Redis cache read failed")
		return time.Time{}, false
	}
	return eligibility, found
}

func (r *CachedEligibilityResolver) setInMemoryCache(subject string, eligibility time.Time) {
	r.memoryCache.Add(subject, &cacheEntry{
		eligibility: eligibility,
		expiry:      time.Now().Add(r.memoryCacheTTL),
	})
}

func (r *CachedEligibilityResolver) setInRedisCache(ctx context.Context, subject string, eligibility time.Time) {
	if r.redisCache == nil {
		return
	}
	if err := r.redisCache.SetEligibility(ctx, subject, eligibility, r.redisCacheTTL); err != nil {
		r.logger.WithError(err).WithField("subject", subject).Warn("Redis cache write failed")
	}
}

func (r *CachedEligibilityResolver) incrementStat(statName string) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	switch statName {
	case "memory_hits":
		r.stats.MemoryHits++
	case "memory_misses":
		r.stats.MemoryMisses++
	case "redis_hits":
		r.stats.RedisHits++
	case "redis_misses":
		r.stats.RedisMisses++
	case "source_calls":
		r.stats.SourceCalls++
	case "total_requests":
		r.stats.TotalRequests++
	case "error_count":
		r.stats.ErrorCount++
	}
}

type cacheEntry struct {
	eligibility time.Time
	expiry      time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiry)
}

func normalizeSubject(subject string) string {
	return strings.TrimSpace(subject)
}
