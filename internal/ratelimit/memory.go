package ratelimit

import (
	"context"
	"sync"
	"time"
)

// attemptRecord tracks attempts for an IP/identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
	BannedAt  *time.Time
}

// MemoryRateLimiter implements in-memory rate limiting
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	if config.CleanupPeriod > 0 {
		go limiter.cleanupLoop()
	}

	return limiter
}

// Allow counts one attempt for identifier and reports whether it may proceed.
func (rl *MemoryRateLimiter) Allow(_ context.Context, identifier string) (*RateLimitInfo, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.attempts[identifier]

	if exists && record.BannedAt != nil {
		if elapsed := now.Sub(*record.BannedAt); elapsed < rl.config.BanDuration {
			return &RateLimitInfo{
				Limit:      rl.config.MaxAttempts,
				ResetTime:  record.BannedAt.Add(rl.config.BanDuration),
				RetryAfter: rl.config.BanDuration - elapsed,
				Banned:     true,
			}, nil
		}
		exists = false
	}

	if !exists || now.Sub(record.FirstSeen) > rl.config.WindowSize {
		record = &attemptRecord{FirstSeen: now}
		rl.attempts[identifier] = record
	}
	record.Count++

	if record.Count > rl.config.MaxAttempts {
		banTime := now
		record.BannedAt = &banTime
		return &RateLimitInfo{
			Limit:      rl.config.MaxAttempts,
			ResetTime:  now.Add(rl.config.BanDuration),
			RetryAfter: rl.config.BanDuration,
			Banned:     true,
		}, nil
	}

	return &RateLimitInfo{
		Allowed:   true,
		Limit:     rl.config.MaxAttempts,
		Remaining: rl.config.MaxAttempts - record.Count,
		ResetTime: record.FirstSeen.Add(rl.config.WindowSize),
	}, nil
}

// RecordSuccess records a successful authentication (resets attempts)
func (rl *MemoryRateLimiter) RecordSuccess(_ context.Context, identifier string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, identifier)
	return nil
}

// cleanupLoop periodically removes old records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes expired records
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		windowExpired := now.Sub(record.FirstSeen) > rl.config.WindowSize
		banExpired := record.BannedAt != nil && now.Sub(*record.BannedAt) > rl.config.BanDuration

		if (windowExpired && record.BannedAt == nil) || banExpired {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() error {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	return nil
}
