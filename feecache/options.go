package feecache

import (
	"log/slog"
	"time"
)

type Option func(c *Cache)

// WithLogger specifies the logger for the cache
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithTTL specifies how long a computed entry stays valid.
// Defaults to 3h
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock specifies the time source of the cache
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}
