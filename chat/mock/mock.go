// Package mock provides a recording messaging channel
package mock

import (
	"context"
	"sync"

	"github.com/TarasTrach/NexusBot/chat"
)

type (
	SendTextDelegate             func(context.Context, int64, string, *chat.Controls) error
	EditTextDelegate             func(context.Context, int64, int64, string, *chat.Controls) error
	EditControlsDelegate         func(context.Context, int64, int64, *chat.Controls) error
	AcknowledgeSelectionDelegate func(context.Context, string, string) error
)

// Message is a single recorded send or edit
type Message struct {
	Controls  *chat.Controls
	Text      string
	ChatID    int64
	MessageID int64
}

// Ack is a single recorded selection acknowledgement
type Ack struct {
	SelectionID string
	Feedback    string
}

// Channel records all outbound calls. The optional delegates can fail a call,
// in which case it's not recorded
type Channel struct {
	SendTextFn             SendTextDelegate
	EditTextFn             EditTextDelegate
	EditControlsFn         EditControlsDelegate
	AcknowledgeSelectionFn AcknowledgeSelectionDelegate

	sent         []Message
	edits        []Message
	controlEdits []Message
	acks         []Ack

	nextID int64
	mux    sync.Mutex
}

func (m *Channel) SendText(ctx context.Context, chatID int64, text string, controls *chat.Controls) (int64, error) {
	if m.SendTextFn != nil {
		if err := m.SendTextFn(ctx, chatID, text, controls); err != nil {
			return 0, err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.nextID++

	m.sent = append(m.sent, Message{
		Controls:  controls,
		Text:      text,
		ChatID:    chatID,
		MessageID: m.nextID,
	})

	return m.nextID, nil
}

func (m *Channel) EditText(
	ctx context.Context,
	chatID, messageID int64,
	text string,
	controls *chat.Controls,
) error {
	if m.EditTextFn != nil {
		if err := m.EditTextFn(ctx, chatID, messageID, text, controls); err != nil {
			return err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.edits = append(m.edits, Message{
		Controls:  controls,
		Text:      text,
		ChatID:    chatID,
		MessageID: messageID,
	})

	return nil
}

func (m *Channel) EditControls(ctx context.Context, chatID, messageID int64, controls *chat.Controls) error {
	if m.EditControlsFn != nil {
		if err := m.EditControlsFn(ctx, chatID, messageID, controls); err != nil {
			return err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.controlEdits = append(m.controlEdits, Message{
		Controls:  controls,
		ChatID:    chatID,
		MessageID: messageID,
	})

	return nil
}

func (m *Channel) AcknowledgeSelection(ctx context.Context, selectionID, feedback string) error {
	if m.AcknowledgeSelectionFn != nil {
		if err := m.AcknowledgeSelectionFn(ctx, selectionID, feedback); err != nil {
			return err
		}
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.acks = append(m.acks, Ack{
		SelectionID: selectionID,
		Feedback:    feedback,
	})

	return nil
}

// Sent returns the recorded sent messages
func (m *Channel) Sent() []Message {
	m.mux.Lock()
	defer m.mux.Unlock()

	return append([]Message(nil), m.sent...)
}

// SentTexts returns the texts of the recorded sent messages
func (m *Channel) SentTexts() []string {
	sent := m.Sent()

	texts := make([]string, 0, len(sent))
	for _, msg := range sent {
		texts = append(texts, msg.Text)
	}

	return texts
}

// Edits returns the recorded text edits
func (m *Channel) Edits() []Message {
	m.mux.Lock()
	defer m.mux.Unlock()

	return append([]Message(nil), m.edits...)
}

// ControlEdits returns the recorded control edits
func (m *Channel) ControlEdits() []Message {
	m.mux.Lock()
	defer m.mux.Unlock()

	return append([]Message(nil), m.controlEdits...)
}

// Acks returns the recorded selection acknowledgements
func (m *Channel) Acks() []Ack {
	m.mux.Lock()
	defer m.mux.Unlock()

	return append([]Ack(nil), m.acks...)
}
