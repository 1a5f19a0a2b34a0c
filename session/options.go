package session

import "log/slog"

type Option func(r *Registry)

// WithLogger specifies the logger for the registry
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}
