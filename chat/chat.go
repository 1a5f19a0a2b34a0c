// Package chat defines the messaging channel boundary of the bot
package chat

import (
	"context"
	"errors"
)

// ErrNotModified is returned when an edit doesn't change the message
var ErrNotModified = errors.New("message is not modified")

// Button is a single interactive control
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Controls are the interactive controls attached to a message, by row
type Controls struct {
	Rows [][]Button `json:"rows"`
}

// NewControls creates a control set with the given rows
func NewControls(rows ...[]Button) *Controls {
	return &Controls{
		Rows: rows,
	}
}

// Row creates a single control row
func Row(buttons ...Button) []Button {
	return buttons
}

// Empty returns true if there are no controls
func (c *Controls) Empty() bool {
	if c == nil {
		return true
	}

	for _, row := range c.Rows {
		if len(row) > 0 {
			return false
		}
	}

	return true
}

// Has returns true if any of the controls carries the data
func (c *Controls) Has(data string) bool {
	if c == nil {
		return false
	}

	for _, row := range c.Rows {
		for _, button := range row {
			if button.Data == data {
				return true
			}
		}
	}

	return false
}

// TextMessage is an inbound text message
type TextMessage struct {
	Text      string
	ChatID    int64
	MessageID int64
}

// Selection is an inbound press of an interactive control
type Selection struct {
	ID        string // the selection id, used for acknowledging
	Data      string // the pressed control data
	ChatID    int64
	MessageID int64 // the message carrying the control
}

// Channel is the outbound side of the messaging channel
type Channel interface {
	// SendText sends a new message, returning its id
	SendText(ctx context.Context, chatID int64, text string, controls *Controls) (int64, error)

	// EditText replaces the message text, and its controls
	EditText(ctx context.Context, chatID, messageID int64, text string, controls *Controls) error

	// EditControls replaces the message controls. Nil controls strip them
	EditControls(ctx context.Context, chatID, messageID int64, controls *Controls) error

	// AcknowledgeSelection acknowledges a control press, with optional feedback
	AcknowledgeSelection(ctx context.Context, selectionID, feedback string) error
}

// Handler is the inbound side of the messaging channel
type Handler interface {
	// HandleText handles a single inbound text message
	HandleText(context.Context, *TextMessage)

	// HandleSelection handles a single inbound control press
	HandleSelection(context.Context, *Selection)
}
