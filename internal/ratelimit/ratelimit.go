// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	WindowSize    time.Duration // time window for counting requests
	MaxRequests   int           // maximum requests per window
	CleanupPeriod time.Duration // how often to drop stale entries
	BanDuration   time.Duration // how long to block after exceeding the limit
}

// DefaultAIConfig bounds the LLM-backed endpoints, which are the expensive
// ones to serve.
func DefaultAIConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxRequests:   30,
		CleanupPeriod: 5 * time.Minute,
		BanDuration:   2 * time.Minute,
	}
}

// Status reports the limiter's verdict for one request.
type Status struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type clientRecord struct {
	count     int
	firstSeen time.Time
	bannedAt  *time.Time
}

// MemoryRateLimiter implements fixed-window in-memory rate limiting keyed by
// client identifier (typically IP).
type MemoryRateLimiter struct {
	config  *Config
	clients map[string]*clientRecord
	mu      sync.Mutex
	stopCh  chan struct{}
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:  config,
		clients: make(map[string]*clientRecord),
		stopCh:  make(chan struct{}),
	}
	go limiter.cleanupLoop()
	return limiter
}

// Allow checks whether a request from the identifier should proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *Status) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	record, exists := rl.clients[identifier]

	if !exists {
		rl.clients[identifier] = &clientRecord{count: 1, firstSeen: now}
		return true, &Status{
			Allowed:   true,
			Remaining: rl.config.MaxRequests - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}
	}

	if record.bannedAt != nil && now.Sub(*record.bannedAt) < rl.config.BanDuration {
		remaining := rl.config.BanDuration - now.Sub(*record.bannedAt)
		return false, &Status{
			ResetTime:  record.bannedAt.Add(rl.config.BanDuration),
			RetryAfter: remaining,
			Banned:     true,
		}
	}

	if now.Sub(record.firstSeen) > rl.config.WindowSize {
		record.count = 1
		record.firstSeen = now
		record.bannedAt = nil
		return true, &Status{
			Allowed:   true,
			Remaining: rl.config.MaxRequests - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}
	}

	record.count++
	if record.count > rl.config.MaxRequests {
		banTime := now
		record.bannedAt = &banTime
		return false, &Status{
			ResetTime:  now.Add(rl.config.BanDuration),
			RetryAfter: rl.config.BanDuration,
			Banned:     true,
		}
	}

	return true, &Status{
		Allowed:   true,
		Remaining: rl.config.MaxRequests - record.count,
		ResetTime: record.firstSeen.Add(rl.config.WindowSize),
	}
}

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

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for identifier, record := range rl.clients {
		windowExpired := now.Sub(record.firstSeen) > rl.config.WindowSize
		banExpired := record.bannedAt != nil && now.Sub(*record.bannedAt) > rl.config.BanDuration

		if (windowExpired && record.bannedAt == nil) || banExpired {
			delete(rl.clients, identifier)
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *MemoryRateLimiter) Close() {
	close(rl.stopCh)
}

// GetClientIP extracts the real client IP, honoring proxy headers.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
