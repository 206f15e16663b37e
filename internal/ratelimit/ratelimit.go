// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config controls the fixed-window limiter.
type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	BanDuration   time.Duration
	CleanupPeriod time.Duration
}

// AuthConfig limits login and registration attempts.
func AuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   5,
		BanDuration:   30 * time.Minute,
		CleanupPeriod: 30 * time.Minute,
	}
}

// AskConfig limits question submissions per user. Questions cost
// credits anyway, so this only has to stop runaway clients.
func AskConfig() *Config {
	return &Config{
		WindowSize:    1 * time.Minute,
		MaxAttempts:   20,
		BanDuration:   5 * time.Minute,
		CleanupPeriod: 10 * time.Minute,
	}
}

// Status reports the limiter's decision for one request.
type Status struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type bucket struct {
	count       int
	windowStart time.Time
	bannedAt    *time.Time
}

// Limiter is an in-memory fixed-window rate limiter keyed by an opaque
// identifier (client IP or user ID). A background goroutine evicts
// stale buckets; call Close on shutdown.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets map[string]*bucket
	stopCh  chan struct{}
}

func New(config *Config) *Limiter {
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow records one attempt for the identifier and reports whether it
// may proceed. Exceeding the window's budget bans the identifier for
// the configured duration.
func (l *Limiter) Allow(identifier string) (bool, *Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[identifier]
	if !ok {
		l.buckets[identifier] = &bucket{count: 1, windowStart: now}
		return true, &Status{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	if b.bannedAt != nil {
		if banLeft := l.config.BanDuration - now.Sub(*b.bannedAt); banLeft > 0 {
			return false, &Status{
				ResetTime:  b.bannedAt.Add(l.config.BanDuration),
				RetryAfter: banLeft,
				Banned:     true,
			}
		}
	}

	if now.Sub(b.windowStart) > l.config.WindowSize {
		b.count = 1
		b.windowStart = now
		b.bannedAt = nil
		return true, &Status{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	b.count++
	if b.count > l.config.MaxAttempts {
		banStart := now
		b.bannedAt = &banStart
		return false, &Status{
			ResetTime:  now.Add(l.config.BanDuration),
			RetryAfter: l.config.BanDuration,
			Banned:     true,
		}
	}

	return true, &Status{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - b.count,
		ResetTime: b.windowStart.Add(l.config.WindowSize),
	}
}

// Reset clears the identifier's bucket, for example after a successful
// login.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, identifier)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictStale()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for identifier, b := range l.buckets {
		windowExpired := now.Sub(b.windowStart) > l.config.WindowSize
		banExpired := b.bannedAt != nil && now.Sub(*b.bannedAt) > l.config.BanDuration
		if (windowExpired && b.bannedAt == nil) || banExpired {
			delete(l.buckets, identifier)
		}
	}
}

func (l *Limiter) Close() {
	close(l.stopCh)
}

// ClientIP extracts the client address, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
