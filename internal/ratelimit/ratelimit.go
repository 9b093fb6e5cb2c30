// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often to clean up old entries
	BanDuration   time.Duration // How long to ban after exceeding limit
}

// DefaultAuthConfig returns the defaults for login and registration.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   10,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   30 * time.Minute,
	}
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// Limiter counts attempts per identifier. Implementations must be safe for
// concurrent use.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (*RateLimitInfo, error)
	// RecordSuccess forgets the attempts of identifier.
	RecordSuccess(ctx context.Context, identifier string) error
	Close() error
}

// ClientIPResolver picks the address a request is counted under. Forwarding
// headers are believed only when the direct peer is a trusted proxy.
type ClientIPResolver struct {
	trusted []*net.IPNet
}

// NewClientIPResolver accepts plain IPs and CIDR ranges. An empty list trusts
// no proxy, so only RemoteAddr is used.
func NewClientIPResolver(trustedProxies []string) (*ClientIPResolver, error) {
	res := &ClientIPResolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			res.trusted = append(res.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		res.trusted = append(res.trusted, network)
	}
	return res, nil
}

func (c *ClientIPResolver) isTrusted(raw string) bool {
	if c == nil {
		return false
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return false
	}
	for _, n := range c.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address for r. A nil resolver trusts no proxy.
// Behind trusted proxies X-Forwarded-For is read right to left and the first
// hop that is not itself a trusted proxy wins.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	peer := remoteIP(r)
	if !c.isTrusted(peer) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !c.isTrusted(hop) || i == 0 {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}
	return peer
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
