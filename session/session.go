package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/TarasTrach/NexusBot/chat"
	"github.com/TarasTrach/NexusBot/settings"
)

const (
	promptAmount        = "Enter the amount (USD):"
	promptDefaultAmount = "Enter the default amount (USD):"
	promptBank          = "Choose the bank:"
	promptRateValue     = "Enter the reference rate (₴):"
	promptRateConfirm   = "Reference rate: %.2f ₴\nUse this rate?"
	promptDiscount      = "Enter the discount (%):"
	errInvalidAmount    = "Enter a valid number:"
	errInvalidRate      = "Enter a valid rate:"
	errInvalidDiscount  = "Enter a valid discount, between 0 and 100:"
	errInvalidChoice    = "Choose one of the offered options"

	maxDiscount = 100.0
)

var bankControls = chat.NewControls(chat.Row(
	chat.Button{Text: "PrivatBank", Data: BankPrivat},
	chat.Button{Text: "Monobank", Data: BankMono},
	chat.Button{Text: "A-Bank", Data: BankA},
))

var rateControls = chat.NewControls(chat.Row(
	chat.Button{Text: "OK", Data: RateOK},
	chat.Button{Text: "Change", Data: RateChange},
))

// listenerKind is the kind of input a session is waiting for
type listenerKind int

const (
	listenText listenerKind = iota
	listenChoice
)

// listener is the single input listener of a session
type listener struct {
	choices   *chat.Controls // offered choices, for choice listeners
	kind      listenerKind
	messageID int64 // the prompt carrying the choices
}

// Session is a single chat's parameter collection flow
type Session struct {
	channel  chat.Channel
	defaults Defaults
	logger   *slog.Logger

	listener   *listener
	onComplete CompleteFunc

	id     xid.ID
	params Params

	chatID int64
	flow   Flow
	state  State
	closed bool

	mux sync.Mutex
}

// ID returns the unique session id
func (s *Session) ID() xid.ID {
	return s.id
}

// State returns the current session state
func (s *Session) State() State {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.state
}

// start sends the first prompt of the flow.
// Must be called with the lock held
func (s *Session) start(ctx context.Context) error {
	switch s.flow {
	case FlowExchange:
		return s.awaitText(ctx, StateAwaitingAmount, promptAmount)
	case FlowRate:
		return s.awaitText(ctx, StateAwaitingRateValue, promptRateValue)
	case FlowSettings:
		return s.awaitText(ctx, StateAwaitingDiscount, promptDiscount)
	default:
		return fmt.Errorf("unknown flow %d", s.flow)
	}
}

// teardown removes the session listener. The session never advances after it
func (s *Session) teardown() {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.closed = true
	s.listener = nil
}

// handleText handles a text input. It returns the frozen params
// if the input completed the session
func (s *Session) handleText(ctx context.Context, text string) (*Params, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.closed || s.listener == nil || s.listener.kind != listenText {
		return nil, false
	}

	switch s.state {
	case StateAwaitingAmount:
		amount, ok := settings.ParseNumber(text)
		if !ok {
			s.send(ctx, errInvalidAmount, nil)

			return nil, true
		}

		s.params.Amount = amount

		if s.flow == FlowSettings {
			return s.complete(), true
		}

		_ = s.awaitChoice(ctx, StateAwaitingBank, promptBank, bankControls)

		return nil, true
	case StateAwaitingRateValue:
		rate, ok := settings.ParseNumber(text)
		if !ok {
			s.send(ctx, errInvalidRate, nil)

			return nil, true
		}

		s.params.Rate = rate
		s.params.RateChanged = true

		if s.flow == FlowRate {
			return s.complete(), true
		}

		return s.completeExchange(ctx), true
	case StateAwaitingDiscount:
		discount, ok := settings.ParseNumber(text)
		if !ok || discount >= maxDiscount {
			s.send(ctx, errInvalidDiscount, nil)

			return nil, true
		}

		s.params.Discount = discount

		_ = s.awaitText(ctx, StateAwaitingAmount, promptDefaultAmount)

		return nil, true
	default:
		return nil, false
	}
}

// handleSelection handles a choice input. It returns the frozen params
// if the input completed the session
func (s *Session) handleSelection(ctx context.Context, selection *chat.Selection) (*Params, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.closed || s.listener == nil || s.listener.kind != listenChoice {
		return nil, false
	}

	if selection.MessageID != s.listener.messageID {
		return nil, false // a stale prompt
	}

	if !s.listener.choices.Has(selection.Data) {
		s.acknowledge(ctx, selection.ID, "")
		s.send(ctx, errInvalidChoice, nil)

		return nil, true
	}

	s.acknowledge(ctx, selection.ID, "")

	switch s.state {
	case StateAwaitingBank:
		s.params.Bank = selection.Data

		rate, err := s.defaults.ReferenceRate(ctx)
		if err != nil {
			s.logger.Error(
				"unable to read reference rate",
				"session", s.id.String(),
				"err", err,
			)
		}

		if rate <= 0 {
			// Nothing to confirm, ask for the rate
			_ = s.awaitText(ctx, StateAwaitingRateValue, promptRateValue)

			return nil, true
		}

		prompt := fmt.Sprintf(promptRateConfirm, rate)
		if err = s.awaitChoice(ctx, StateAwaitingRateConfirmation, prompt, rateControls); err != nil {
			return nil, true
		}

		s.params.Rate = rate

		return nil, true
	case StateAwaitingRateConfirmation:
		if selection.Data == RateChange {
			_ = s.awaitText(ctx, StateAwaitingRateValue, promptRateValue)

			return nil, true
		}

		return s.completeExchange(ctx), true
	default:
		return nil, false
	}
}

// completeExchange fills in the default discount, and completes the session
func (s *Session) completeExchange(ctx context.Context) *Params {
	discount, err := s.defaults.DefaultDiscount(ctx)
	if err != nil {
		s.logger.Error(
			"unable to read default discount",
			"session", s.id.String(),
			"err", err,
		)
	}

	s.params.Discount = discount

	return s.complete()
}

// complete freezes the collected params, and closes the session
func (s *Session) complete() *Params {
	s.state = StateComplete
	s.listener = nil
	s.closed = true

	params := s.params

	return &params
}

// awaitText moves to the state, and registers a text listener
func (s *Session) awaitText(ctx context.Context, state State, prompt string) error {
	s.state = state
	s.listener = &listener{
		kind: listenText,
	}

	_, err := s.send(ctx, prompt, nil)

	return err
}

// awaitChoice moves to the state, and registers a choice listener
// bound to the prompt message. If the prompt can't be sent,
// the session stays on its current state and listener
func (s *Session) awaitChoice(ctx context.Context, state State, prompt string, choices *chat.Controls) error {
	messageID, err := s.send(ctx, prompt, choices)
	if err != nil {
		return err
	}

	s.state = state
	s.listener = &listener{
		kind:      listenChoice,
		choices:   choices,
		messageID: messageID,
	}

	return nil
}

func (s *Session) send(ctx context.Context, text string, controls *chat.Controls) (int64, error) {
	messageID, err := s.channel.SendText(ctx, s.chatID, text, controls)
	if err != nil {
		s.logger.Error(
			"unable to send session message",
			"session", s.id.String(),
			"chat_id", s.chatID,
			"err", err,
		)

		return 0, err
	}

	return messageID, nil
}

func (s *Session) acknowledge(ctx context.Context, selectionID, feedback string) {
	if err := s.channel.AcknowledgeSelection(ctx, selectionID, feedback); err != nil {
		s.logger.Error(
			"unable to acknowledge selection",
			"session", s.id.String(),
			"err", err,
		)
	}
}
