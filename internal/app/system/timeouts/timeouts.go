// Package timeouts provides centralized timeout values for blocking calls.
//
// Every store operation, identity-provider call and downstream service call
// runs under one of these bounds, so a hung dependency surfaces as an error
// instead of stalling a request.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads, lookups and updates
//   - Medium: list queries and searches
//   - Provider: fetching the identity provider's signing keys
//   - Upstream: one call from the gateway to a backing service
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultProvider = 5 * time.Second
	DefaultUpstream = 10 * time.Second
)

var mu sync.RWMutex

var (
	ping     = DefaultPing
	short    = DefaultShort
	medium   = DefaultMedium
	provider = DefaultProvider
	upstream = DefaultUpstream
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document store operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Provider returns the timeout for identity-provider key fetches.
func Provider() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return provider
}

// Upstream returns the timeout for a single call to a backing service.
func Upstream() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upstream
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Provider time.Duration
	Upstream time.Duration
}

// Configure sets custom timeout values. Zero values keep the current value.
// Call during startup before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Provider > 0 {
		provider = cfg.Provider
	}
	if cfg.Upstream > 0 {
		upstream = cfg.Upstream
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	provider = DefaultProvider
	upstream = DefaultUpstream
}

// ConfigureFromEnv reads EVENTHUB_TIMEOUT_{PING,SHORT,MEDIUM,PROVIDER,UPSTREAM}
// as Go durations ("2s", "500ms"). Unset or invalid values are skipped.
// Returns the number of timeouts configured.
func ConfigureFromEnv() int {
	vars := []struct {
		name string
		dst  *time.Duration
	}{
		{"EVENTHUB_TIMEOUT_PING", &ping},
		{"EVENTHUB_TIMEOUT_SHORT", &short},
		{"EVENTHUB_TIMEOUT_MEDIUM", &medium},
		{"EVENTHUB_TIMEOUT_PROVIDER", &provider},
		{"EVENTHUB_TIMEOUT_UPSTREAM", &upstream},
	}

	mu.Lock()
	defer mu.Unlock()
	configured := 0
	for _, v := range vars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			configured++
		}
	}
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:     ping,
		Short:    short,
		Medium:   medium,
		Provider: provider,
		Upstream: upstream,
	}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.Log, "list events")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
