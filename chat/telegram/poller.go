package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/TarasTrach/NexusBot/chat"
)

const retryDelay = 3 * time.Second

// Poller long-polls the Bot API, and dispatches updates to the handler.
// Updates are dispatched one at a time, in the order they were received
type Poller struct {
	client  *Client
	handler chat.Handler

	offset int64
}

// NewPoller creates a new update poller
func NewPoller(client *Client, handler chat.Handler) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
	}
}

// Start starts the polling loop [BLOCKING]
func (p *Poller) Start(ctx context.Context) error {
	p.client.logger.Info("update polling started")

	for {
		select {
		case <-ctx.Done():
			p.client.logger.Info("update polling shut down")

			return nil
		default:
		}

		updates, err := p.client.GetUpdates(ctx, p.offset)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue // shutting down
			}

			p.client.logger.Error(
				"unable to fetch updates",
				"err", err,
			)

			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}

			continue
		}

		for _, update := range updates {
			p.offset = update.UpdateID + 1

			p.dispatch(ctx, update)
		}
	}
}

// dispatch routes a single update to the handler
func (p *Poller) dispatch(ctx context.Context, update Update) {
	switch {
	case update.Message != nil:
		if update.Message.Text == "" {
			return // only text is supported
		}

		p.handler.HandleText(ctx, &chat.TextMessage{
			Text:      update.Message.Text,
			ChatID:    update.Message.Chat.ID,
			MessageID: update.Message.MessageID,
		})
	case update.CallbackQuery != nil:
		selection := &chat.Selection{
			ID:   update.CallbackQuery.ID,
			Data: update.CallbackQuery.Data,
		}

		if msg := update.CallbackQuery.Message; msg != nil {
			selection.ChatID = msg.Chat.ID
			selection.MessageID = msg.MessageID
		}

		p.handler.HandleSelection(ctx, selection)
	}
}
