package ratelimit

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int) (*MemoryRateLimiter, *time.Time) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewMemoryRateLimiter(&Config{WindowSize: time.Minute, MaxAttempts: max, BanDuration: 5 * time.Minute})
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestMemoryRateLimiterBansAfterLimit(t *testing.T) {
	rl, _ := newTestLimiter(3)
	defer rl.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		info, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, info.Allowed)
		assert.Equal(t, 3-(i+1), info.Remaining)
	}

	info, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, info.Allowed)
	assert.True(t, info.Banned)
	assert.Equal(t, 5*time.Minute, info.RetryAfter)

	other, err := rl.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryRateLimiterBanExpires(t *testing.T) {
	rl, clock := newTestLimiter(1)
	defer rl.Close()
	ctx := context.Background()

	_, _ = rl.Allow(ctx, "ip")
	info, _ := rl.Allow(ctx, "ip")
	require.True(t, info.Banned)

	*clock = clock.Add(2 * time.Minute)
	info, _ = rl.Allow(ctx, "ip")
	assert.True(t, info.Banned)
	assert.Equal(t, 3*time.Minute, info.RetryAfter)

	*clock = clock.Add(4 * time.Minute)
	info, _ = rl.Allow(ctx, "ip")
	assert.True(t, info.Allowed)
}

func TestMemoryRateLimiterWindowResets(t *testing.T) {
	rl, clock := newTestLimiter(2)
	defer rl.Close()
	ctx := context.Background()

	_, _ = rl.Allow(ctx, "ip")
	_, _ = rl.Allow(ctx, "ip")
	*clock = clock.Add(2 * time.Minute)

	info, _ := rl.Allow(ctx, "ip")
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestMemoryRateLimiterRecordSuccess(t *testing.T) {
	rl, _ := newTestLimiter(2)
	defer rl.Close()
	ctx := context.Background()

	_, _ = rl.Allow(ctx, "ip")
	_, _ = rl.Allow(ctx, "ip")
	require.NoError(t, rl.RecordSuccess(ctx, "ip"))

	info, _ := rl.Allow(ctx, "ip")
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestMemoryRateLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(5)
	defer rl.Close()

	_, _ = rl.Allow(context.Background(), "ip")
	*clock = clock.Add(2 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.attempts)
}

func TestClientIPResolver(t *testing.T) {
	proxies, err := NewClientIPResolver([]string{"127.0.0.1", "10.0.0.0/8", " "})
	require.NoError(t, err)

	tests := []struct {
		name     string
		resolver *ClientIPResolver
		headers  map[string]string
		remote   string
		want     string
	}{
		{"untrusted peer ignores forwarded for", proxies, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.168.1.5:4321", "192.168.1.5"},
		{"untrusted peer ignores real ip", proxies, map[string]string{"X-Real-IP": "203.0.113.9"}, "192.168.1.5:4321", "192.168.1.5"},
		{"nil resolver uses peer", nil, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "127.0.0.1:80", "127.0.0.1"},
		{"trusted peer forwarded for", proxies, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "127.0.0.1:80", "203.0.113.9"},
		{"skips trusted hops from the right", proxies, map[string]string{"X-Forwarded-For": "198.51.100.1, 203.0.113.9, 10.2.3.4"}, "127.0.0.1:80", "203.0.113.9"},
		{"all hops trusted", proxies, map[string]string{"X-Forwarded-For": "10.0.0.7, 10.0.0.8"}, "127.0.0.1:80", "10.0.0.7"},
		{"trusted peer real ip", proxies, map[string]string{"X-Real-IP": "203.0.113.10"}, "10.9.9.9:80", "203.0.113.10"},
		{"garbage real ip", proxies, map[string]string{"X-Real-IP": "nope"}, "10.9.9.9:80", "10.9.9.9"},
		{"remote without port", proxies, nil, "192.168.1.6", "192.168.1.6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.resolver.ClientIP(r))
		})
	}

	_, err = NewClientIPResolver([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = NewClientIPResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestRedisRateLimiter(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rl, err := NewRedisRateLimiter(ctx, redisURL, &Config{WindowSize: time.Minute, MaxAttempts: 2, BanDuration: time.Minute})
	require.NoError(t, err)
	defer rl.Close()

	id := "test:" + uuid.NewString()
	defer rl.RecordSuccess(ctx, id)

	info, err := rl.Allow(ctx, id)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)

	_, err = rl.Allow(ctx, id)
	require.NoError(t, err)
	info, err = rl.Allow(ctx, id)
	require.NoError(t, err)
	assert.True(t, info.Banned)

	require.NoError(t, rl.RecordSuccess(ctx, id))
	info, err = rl.Allow(ctx, id)
	require.NoError(t, err)
	assert.True(t, info.Allowed)
}
