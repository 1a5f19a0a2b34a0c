// Package session drives the per-chat parameter collection flows.
// A chat has at most one active session, and a new one always
// tears down the previous one before it starts listening
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/TarasTrach/NexusBot/chat"
)

// Defaults provides the stored values a session falls back to
type Defaults interface {
	// ReferenceRate returns the stored reference rate, 0 if none
	ReferenceRate(context.Context) (float64, error)

	// DefaultDiscount returns the default discount percent
	DefaultDiscount(context.Context) (float64, error)
}

// CompleteFunc receives the frozen params of a completed session
type CompleteFunc func(ctx context.Context, chatID int64, flow Flow, params Params)

// Registry is the chat -> session registry
type Registry struct {
	channel  chat.Channel
	defaults Defaults
	logger   *slog.Logger

	sessions map[int64]*Session
	mux      sync.Mutex
}

// NewRegistry creates a new session registry
func NewRegistry(channel chat.Channel, defaults Defaults, opts ...Option) *Registry {
	r := &Registry{
		channel:  channel,
		defaults: defaults,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: make(map[int64]*Session),
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Begin starts a new session for the chat, replacing any active one.
// The previous session is torn down before the new one sends its first prompt
func (r *Registry) Begin(
	ctx context.Context,
	chatID int64,
	flow Flow,
	onComplete CompleteFunc,
) (*Session, error) {
	s := &Session{
		channel:    r.channel,
		defaults:   r.defaults,
		logger:     r.logger,
		onComplete: onComplete,
		id:         xid.New(),
		chatID:     chatID,
		flow:       flow,
		state:      StateIdle,
	}

	// Inputs for the new session wait until it has started
	s.mux.Lock()
	defer s.mux.Unlock()

	r.mux.Lock()
	prev := r.sessions[chatID]
	r.sessions[chatID] = s
	r.mux.Unlock()

	if prev != nil {
		prev.teardown()

		r.logger.Info(
			"replaced active session",
			"chat_id", chatID,
			"previous", prev.id.String(),
			"session", s.id.String(),
		)
	}

	if err := s.start(ctx); err != nil {
		s.closed = true
		s.listener = nil

		r.remove(s)

		return nil, err
	}

	r.logger.Info(
		"session started",
		"chat_id", chatID,
		"flow", flow.String(),
		"session", s.id.String(),
	)

	return s, nil
}

// HandleText delivers a text message to the chat's active session.
// It returns false if no session is listening for text
func (r *Registry) HandleText(ctx context.Context, msg *chat.TextMessage) bool {
	s := r.lookup(msg.ChatID)
	if s == nil {
		return false
	}

	params, handled := s.handleText(ctx, msg.Text)
	if params != nil {
		r.complete(ctx, s, *params)
	}

	return handled
}

// HandleSelection delivers a control press to the chat's active session.
// It returns false if no session is listening for this choice
func (r *Registry) HandleSelection(ctx context.Context, selection *chat.Selection) bool {
	s := r.lookup(selection.ChatID)
	if s == nil {
		return false
	}

	params, handled := s.handleSelection(ctx, selection)
	if params != nil {
		r.complete(ctx, s, *params)
	}

	return handled
}

// State returns the state of the chat's active session, if any
func (r *Registry) State(chatID int64) State {
	s := r.lookup(chatID)
	if s == nil {
		return StateIdle
	}

	return s.State()
}

// Cancel tears down the chat's active session, if any
func (r *Registry) Cancel(chatID int64) bool {
	r.mux.Lock()
	s, ok := r.sessions[chatID]
	delete(r.sessions, chatID)
	r.mux.Unlock()

	if !ok {
		return false
	}

	s.teardown()

	return true
}

func (r *Registry) lookup(chatID int64) *Session {
	r.mux.Lock()
	defer r.mux.Unlock()

	return r.sessions[chatID]
}

// remove drops the session, if it's still the active one for its chat
func (r *Registry) remove(s *Session) bool {
	r.mux.Lock()
	defer r.mux.Unlock()

	if r.sessions[s.chatID] != s {
		return false
	}

	delete(r.sessions, s.chatID)

	return true
}

// complete discards the completed session, and hands off its params
func (r *Registry) complete(ctx context.Context, s *Session, params Params) {
	if !r.remove(s) {
		return // superseded in the meantime
	}

	r.logger.Info(
		"session completed",
		"chat_id", s.chatID,
		"flow", s.flow.String(),
		"session", s.id.String(),
	)

	if s.onComplete != nil {
		s.onComplete(ctx, s.chatID, s.flow, params)
	}
}
