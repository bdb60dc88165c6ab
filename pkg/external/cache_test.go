package external

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effect-crf-validators/internal/domain"
)

func newTestCacheClient(t *testing.T) *CacheClient {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis tests")
	}

	client, err := NewCacheClient(domain.CacheConfig{
		RedisAddr:  addr,
		DefaultTTL: time.Minute,
		PoolSize:   2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheClient_Eligibility(t *testing.T) {
	ctx := context.Background()
	client := newTestCacheClient(t)
	subject := "test-" + time.Now().Format("150405.000000")
	eligibility := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)

	_, found, err := client.GetEligibility(ctx, subject)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetEligibility(ctx, subject, eligibility, 0))

	got, found, err := client.GetEligibility(ctx, subject)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, eligibility.Equal(got))

	require.NoError(t, client.InvalidateSubject(ctx, subject))

	_, found, err = client.GetEligibility(ctx, subject)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheClient_CorruptedEntry(t *testing.T) {
	ctx := context.Background()
	client := newTestCacheClient(t)
	subject := "corrupt-" + time.Now().Format("150405.000000")

	require.NoError(t, client.redis.Set(ctx, eligibilityKey(subject), "not json", time.Minute).Err())

	_, found, err := client.GetEligibility(ctx, subject)
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := client.redis.Exists(ctx, eligibilityKey(subject)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists, "corrupted entry should be removed")
}

func TestNewCacheClient_RequiresAddress(t *testing.T) {
	_, err := NewCacheClient(domain.CacheConfig{})
	assert.Error(t, err)
}

func TestEligibilityKey(t *testing.T) {
	assert.Equal(t, "crf:eligibility:101-01-0001-1", eligibilityKey("101-01-0001-1"))
}
