package aggregate

import (
	"log/slog"
	"time"
)

type Option func(a *Aggregator)

// WithLogger specifies the logger for the aggregator
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithAdapterTimeout bounds every single adapter fetch.
// Defaults to 0 (no bound besides the adapter transport's own timeout)
func WithAdapterTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.adapterTimeout = d
	}
}
