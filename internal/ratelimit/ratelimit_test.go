package ratelimit

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNilLockerIsDisabled(t *testing.T) {
	var locker *Locker
	assert.False(t, locker.Enabled())
	assert.Nil(t, NewLocker(nil))

	_, ok, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrLockNotConfigured)
	assert.NoError(t, locker.Release(context.Background(), "k", "token"))
}

func TestLockerValidatesArguments(t *testing.T) {
	locker := NewLocker(unreachableClient(t))
	require.True(t, locker.Enabled())

	_, _, err := locker.TryLock(context.Background(), " ", time.Second)
	assert.ErrorIs(t, err, ErrInvalidLockKey)
	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidLockTTL)

	_, ok, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestDecide(t *testing.T) {
	d, err := decide([]any{int64(1), "3.5"}, 1)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.Remaining)

	d, err = decide([]any{int64(0), "0.5"}, 0.5)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	_, err = decide([]any{int64(1)}, 1)
	assert.Error(t, err)
	_, err = decide([]any{"1", "2"}, 1)
	assert.Error(t, err)
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(0.5, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestSubmissionLimiterDisabledWithoutRedis(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, SubmissionRate: 1, SubmissionBurst: 1}}
	limiter := NewSubmissionLimiter(nil, cfg, zap.NewNop())
	assert.Nil(t, limiter)
	assert.False(t, limiter.Enabled())
	assert.True(t, limiter.Allow(context.Background(), ScopeQuote, "10.0.0.1").Allowed)
}

func TestSubmissionLimiterFailsOpen(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, SubmissionRate: 1, SubmissionBurst: 1}}
	limiter := NewSubmissionLimiter(unreachableClient(t), cfg, zap.NewNop())
	require.True(t, limiter.Enabled())

	assert.True(t, limiter.Allow(context.Background(), ScopeContact, "").Allowed)
}
