package telegram

import "log/slog"

type Option func(c *Client)

// WithLogger specifies the logger for the client
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithBaseURL overrides the Bot API URL, including the bot token path
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}
