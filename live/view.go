package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/TarasTrach/NexusBot/chat"
)

// CancelData is the data of the control stopping a live view
const CancelData = "STOP_LIVE"

const stoppedFeedback = "Live updates stopped"

var cancelControls = chat.NewControls(chat.Row(
	chat.Button{Text: "❌ Stop", Data: CancelData},
))

// Frame is a single rendered state of a live view
type Frame struct {
	Best *float64 // the best eligible price, if any
	Text string
}

// RenderFunc renders the current frame of a live view.
// Failures are rendered as plain-language text
type RenderFunc func(context.Context) Frame

// ViewOptions are the live view parameters
type ViewOptions struct {
	// AlertText renders the alert for a best price below AlertBelow
	AlertText func(price float64) string

	// Interval is the refresh interval
	Interval time.Duration

	// AlertBelow triggers an alert when the best price drops below it.
	// Disabled if 0
	AlertBelow float64
}

// View is a single live view, attached to a sent message.
// Once stopped, it never edits the message again
type View struct {
	channel chat.Channel
	logger  *slog.Logger
	render  RenderFunc

	lastAlert *float64
	opts      ViewOptions

	id        xid.ID
	lastText  string
	chatID    int64
	messageID int64
	stopped   bool

	mux sync.Mutex
}

// ID returns the unique view id
func (v *View) ID() xid.ID {
	return v.id
}

// ChatID returns the chat the view is displayed in
func (v *View) ChatID() int64 {
	return v.chatID
}

// MessageID returns the message the view is attached to
func (v *View) MessageID() int64 {
	return v.messageID
}

// Stopped returns true if the view was cancelled
func (v *View) Stopped() bool {
	v.mux.Lock()
	defer v.mux.Unlock()

	return v.stopped
}

// refresh renders the view, and updates the message only if the text changed
func (v *View) refresh(ctx context.Context) {
	frame := v.render(ctx)

	v.mux.Lock()
	defer v.mux.Unlock()

	if v.stopped {
		return
	}

	if frame.Text != v.lastText {
		err := v.channel.EditText(ctx, v.chatID, v.messageID, frame.Text, cancelControls)

		switch {
		case err == nil, errors.Is(err, chat.ErrNotModified):
			v.lastText = frame.Text
		default:
			// The edit is retried on the next tick
			v.logger.Error(
				"unable to update live view",
				"view", v.id.String(),
				"chat_id", v.chatID,
				"err", err,
			)
		}
	}

	v.alert(ctx, frame.Best)
}

// alert sends a notification the first time a best price drops below the threshold.
// Must be called with the lock held
func (v *View) alert(ctx context.Context, best *float64) {
	if v.opts.AlertBelow <= 0 || best == nil || *best >= v.opts.AlertBelow {
		return
	}

	if v.lastAlert != nil && *v.lastAlert == *best {
		return // already alerted on this price
	}

	text := alertText(v.opts, *best)

	if _, err := v.channel.SendText(ctx, v.chatID, text, nil); err != nil {
		v.logger.Error(
			"unable to send live view alert",
			"view", v.id.String(),
			"chat_id", v.chatID,
			"err", err,
		)

		return
	}

	price := *best
	v.lastAlert = &price
}

// stop stops the view, and strips its controls
func (v *View) stop(ctx context.Context) bool {
	v.mux.Lock()
	defer v.mux.Unlock()

	if v.stopped {
		return false
	}

	v.stopped = true

	if err := v.channel.EditControls(ctx, v.chatID, v.messageID, nil); err != nil &&
		!errors.Is(err, chat.ErrNotModified) {
		v.logger.Error(
			"unable to strip live view controls",
			"view", v.id.String(),
			"chat_id", v.chatID,
			"err", err,
		)
	}

	return true
}

func alertText(opts ViewOptions, price float64) string {
	if opts.AlertText != nil {
		return opts.AlertText(price)
	}

	return defaultAlertText(price, opts.AlertBelow)
}
