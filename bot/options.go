package bot

import (
	"log/slog"
	"time"
)

type Option func(b *Bot)

// WithLogger specifies the logger for the bot
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = l
	}
}

// WithAdminChatID specifies the chat allowed to use the admin commands
func WithAdminChatID(chatID int64) Option {
	return func(b *Bot) {
		b.adminChatID = chatID
	}
}

// WithCommandCooldown specifies the per-chat cooldown between public commands.
// Defaults to 5s, disabled if 0
func WithCommandCooldown(cooldown time.Duration) Option {
	return func(b *Bot) {
		b.limiter = newLimiter(cooldown)
	}
}

// WithReference specifies the reference rate source, used by /fetchrate
func WithReference(reference RateSource) Option {
	return func(b *Bot) {
		b.reference = reference
	}
}
