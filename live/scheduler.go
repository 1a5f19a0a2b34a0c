// Package live keeps chat messages updated with periodically re-rendered views
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/TarasTrach/NexusBot/chat"
)

var (
	errInvalidRender   = errors.New("invalid render func")
	errInvalidInterval = errors.New("invalid interval")
)

// viewKey identifies a live view by the message it's attached to
type viewKey struct {
	chatID    int64
	messageID int64
}

// Scheduler is the refresh scheduler for the attached live views
type Scheduler struct {
	channel chat.Channel
	logger  *slog.Logger

	views    map[viewKey]*View
	viewsMux sync.Mutex

	q             iq.Queue[scheduledTick]
	queryInterval time.Duration
	qMux          sync.Mutex
}

// New creates a new Scheduler instance
func New(channel chat.Channel, opts ...Option) *Scheduler {
	s := &Scheduler{
		channel:       channel,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		views:         make(map[viewKey]*View),
		q:             iq.NewQueue[scheduledTick](),
		queryInterval: 250 * time.Millisecond,
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Attach renders the view once, sends it with a cancel control,
// and schedules its periodic refresh
func (s *Scheduler) Attach(
	ctx context.Context,
	chatID int64,
	render RenderFunc,
	opts ViewOptions,
) (*View, error) {
	if render == nil {
		return nil, errInvalidRender
	}

	if opts.Interval <= 0 {
		return nil, errInvalidInterval
	}

	frame := render(ctx)

	messageID, err := s.channel.SendText(ctx, chatID, frame.Text, cancelControls)
	if err != nil {
		return nil, fmt.Errorf("unable to send live view: %w", err)
	}

	v := &View{
		channel:   s.channel,
		logger:    s.logger,
		render:    render,
		opts:      opts,
		id:        xid.New(),
		lastText:  frame.Text,
		chatID:    chatID,
		messageID: messageID,
	}

	// The initial frame can already be below the threshold
	v.mux.Lock()
	v.alert(ctx, frame.Best)
	v.mux.Unlock()

	s.viewsMux.Lock()
	s.views[viewKey{chatID: chatID, messageID: messageID}] = v
	s.viewsMux.Unlock()

	s.logger.Info(
		"attached live view",
		"view", v.id.String(),
		"chat_id", chatID,
		"message_id", messageID,
		"interval", opts.Interval.String(),
	)

	s.scheduleTick(time.Now().UTC().Add(opts.Interval), v)

	return v, nil
}

// Cancel stops the live view the selection was made on.
// Selections that don't target an active view are ignored
func (s *Scheduler) Cancel(ctx context.Context, selection *chat.Selection) bool {
	if selection.Data != CancelData {
		return false
	}

	key := viewKey{chatID: selection.ChatID, messageID: selection.MessageID}

	s.viewsMux.Lock()
	v, ok := s.views[key]
	delete(s.views, key)
	s.viewsMux.Unlock()

	if !ok {
		return false
	}

	if !v.stop(ctx) {
		return false
	}

	if err := s.channel.AcknowledgeSelection(ctx, selection.ID, stoppedFeedback); err != nil {
		s.logger.Error(
			"unable to acknowledge live view cancel",
			"view", v.id.String(),
			"err", err,
		)
	}

	s.logger.Info(
		"live view stopped",
		"view", v.id.String(),
		"chat_id", v.chatID,
	)

	return true
}

// Active returns the number of active live views
func (s *Scheduler) Active() int {
	s.viewsMux.Lock()
	defer s.viewsMux.Unlock()

	return len(s.views)
}

// Start starts the live view refresh loop [BLOCKING]
func (s *Scheduler) Start(ctx context.Context) error {
	collectorCh := make(chan *tickResponse, 100)

	// Start a listener for monitoring ticks
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleTicks spawns all refreshes that are due
	handleTicks := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				next := s.nextTick()
				if next == nil {
					return // nothing is due
				}

				if next.view.Stopped() {
					continue // cancelled while waiting, drop it
				}

				go handleTick(ctx, next.view, collectorCh)
			}
		}
	}

	handleTicks()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("live view scheduler shut down")

			return nil
		case <-ticker.C:
			handleTicks()
		case response := <-collectorCh:
			v := response.view

			if v.Stopped() {
				continue
			}

			// A view is only rescheduled once its previous refresh is done
			s.scheduleTick(
				time.Now().UTC().Add(v.opts.Interval),
				v,
			)
		}
	}
}

// scheduleTick schedules a new view refresh
func (s *Scheduler) scheduleTick(at time.Time, v *View) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	s.q.Push(scheduledTick{
		at:   at,
		view: v,
	})
}

// nextTick fetches the next due refresh, as of the moment of calling
func (s *Scheduler) nextTick() *scheduledTick {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	now := time.Now().UTC()

	if s.q.Len() == 0 {
		return nil
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(now) {
		return nil
	}

	return s.q.PopFront()
}
