// Package bot routes the chat commands to the sessions, live views and fee quotes
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/TarasTrach/NexusBot/arbitrage"
	"github.com/TarasTrach/NexusBot/chat"
	"github.com/TarasTrach/NexusBot/live"
	"github.com/TarasTrach/NexusBot/session"
	"github.com/TarasTrach/NexusBot/storage/types"
)

const defaultCommandCooldown = 5 * time.Second

const (
	welcomeText = "Hello mate! Nice to meet you👋\n" +
		"This is bot for getting additional info about @UpworkTaras\n\n" +
		"Available commands:\n" +
		"/cryptofees - for getting actual fees PayPal/Payoneer -> Crypto conversion\n\n" +
		"Have a nice day!"

	feeUnavailableText  = "Unable to compute the fee right now, try again later."
	liveUnavailableText = "Unable to start live updates, try again later."
	settingErrorText    = "Unable to save the setting, try again later."
	referenceOffText    = "The reference rate source is not configured."
	referenceErrorText  = "Unable to fetch the reference rate, try again later."
	cancelledText       = "Cancelled."
	nothingToCancelText = "Nothing to cancel."

	spamText          = "Don't spam, try in %d seconds."
	rateSavedText     = "Reference rate saved: %.2f ₴"
	rateFetchedText   = "Reference rate updated: %.2f ₴"
	settingsSavedText = "Settings saved: discount %s%%, amount %s $"
)

// Views renders the live views
type Views interface {
	ExchangeView(arbitrage.ExchangeParams) (live.RenderFunc, live.ViewOptions)
	MarketView() (live.RenderFunc, live.ViewOptions)
}

// Quotes serves the cached fee quotes
type Quotes interface {
	DefaultParams(context.Context) (types.FeeParams, error)
	Quote(context.Context, types.FeeParams) (*types.FeeEntry, error)
}

// Settings stores the values collected by the sessions
type Settings interface {
	SetReferenceRate(context.Context, float64) error
	SetDefaultDiscount(context.Context, float64) error
	SetDefaultAmount(context.Context, float64) error
}

// RateSource fetches the current reference rate
type RateSource interface {
	Rate(context.Context) (float64, error)
}

// Bot is the chat command router
type Bot struct {
	channel  chat.Channel
	logger   *slog.Logger
	sessions *session.Registry
	live     *live.Scheduler

	views     Views
	quotes    Quotes
	settings  Settings
	reference RateSource

	limiter *limiter

	adminChatID int64
	wg          sync.WaitGroup
}

// New creates a new bot router
func New(
	channel chat.Channel,
	sessions *session.Registry,
	scheduler *live.Scheduler,
	views Views,
	quotes Quotes,
	settings Settings,
	opts ...Option,
) *Bot {
	b := &Bot{
		channel:  channel,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: sessions,
		live:     scheduler,
		views:    views,
		quotes:   quotes,
		settings: settings,
		limiter:  newLimiter(defaultCommandCooldown),
	}

	// Apply the options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// HandleText routes a text message to its command, or to the chat's session
func (b *Bot) HandleText(ctx context.Context, msg *chat.TextMessage) {
	command, ok := parseCommand(msg.Text)
	if !ok {
		if !b.sessions.HandleText(ctx, msg) {
			b.logger.Debug(
				"unhandled text message",
				"chat_id", msg.ChatID,
			)
		}

		return
	}

	admin := b.isAdmin(msg.ChatID)

	if !admin && !b.limiter.allow(msg.ChatID) {
		b.send(ctx, msg.ChatID, fmt.Sprintf(spamText, int(b.limiter.cooldown.Seconds())))

		return
	}

	switch command {
	case cmdStart:
		b.send(ctx, msg.ChatID, welcomeText)
	case cmdCryptoFees:
		b.spawn(func() {
			b.sendFeeQuote(ctx, msg.ChatID)
		})
	default:
		if !admin {
			return // admin commands are silently ignored
		}

		b.handleAdminCommand(ctx, msg.ChatID, command)
	}
}

// HandleSelection routes a control press to the live views,
// and then to the chat's session
func (b *Bot) HandleSelection(ctx context.Context, selection *chat.Selection) {
	if b.live.Cancel(ctx, selection) {
		return
	}

	if b.sessions.HandleSelection(ctx, selection) {
		return
	}

	// A stale control, stop the client's spinner
	if err := b.channel.AcknowledgeSelection(ctx, selection.ID, ""); err != nil {
		b.logger.Error(
			"unable to acknowledge selection",
			"chat_id", selection.ChatID,
			"err", err,
		)
	}
}

// Wait waits for all background command work to finish
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case cmdExchange:
		b.beginSession(ctx, chatID, session.FlowExchange)
	case cmdRate:
		b.beginSession(ctx, chatID, session.FlowRate)
	case cmdSettings:
		b.beginSession(ctx, chatID, session.FlowSettings)
	case cmdMarket:
		render, opts := b.views.MarketView()

		b.spawn(func() {
			b.attach(ctx, chatID, render, opts)
		})
	case cmdFetchRate:
		b.spawn(func() {
			b.fetchReferenceRate(ctx, chatID)
		})
	case cmdCancel:
		if b.sessions.Cancel(chatID) {
			b.send(ctx, chatID, cancelledText)

			return
		}

		b.send(ctx, chatID, nothingToCancelText)
	default:
		b.logger.Debug(
			"unknown command",
			"chat_id", chatID,
			"command", command,
		)
	}
}

func (b *Bot) beginSession(ctx context.Context, chatID int64, flow session.Flow) {
	if _, err := b.sessions.Begin(ctx, chatID, flow, b.complete); err != nil {
		b.logger.Error(
			"unable to begin session",
			"chat_id", chatID,
			"flow", flow.String(),
			"err", err,
		)
	}
}

// complete acts on the params of a completed session
func (b *Bot) complete(ctx context.Context, chatID int64, flow session.Flow, params session.Params) {
	switch flow {
	case session.FlowExchange:
		if params.RateChanged {
			if err := b.settings.SetReferenceRate(ctx, params.Rate); err != nil {
				b.logger.Error(
					"unable to save reference rate",
					"chat_id", chatID,
					"err", err,
				)
			}
		}

		render, opts := b.views.ExchangeView(arbitrage.ExchangeParams{
			Bank:     params.Bank,
			Amount:   params.Amount,
			Rate:     params.Rate,
			Discount: params.Discount,
		})

		b.spawn(func() {
			b.attach(ctx, chatID, render, opts)
		})
	case session.FlowRate:
		if err := b.settings.SetReferenceRate(ctx, params.Rate); err != nil {
			b.settingError(ctx, chatID, err)

			return
		}

		b.send(ctx, chatID, fmt.Sprintf(rateSavedText, params.Rate))
	case session.FlowSettings:
		if err := b.settings.SetDefaultDiscount(ctx, params.Discount); err != nil {
			b.settingError(ctx, chatID, err)

			return
		}

		if err := b.settings.SetDefaultAmount(ctx, params.Amount); err != nil {
			b.settingError(ctx, chatID, err)

			return
		}

		b.send(ctx, chatID, fmt.Sprintf(
			settingsSavedText,
			formatFloat(params.Discount),
			formatFloat(params.Amount),
		))
	}
}

func (b *Bot) attach(ctx context.Context, chatID int64, render live.RenderFunc, opts live.ViewOptions) {
	if _, err := b.live.Attach(ctx, chatID, render, opts); err != nil {
		b.logger.Error(
			"unable to attach live view",
			"chat_id", chatID,
			"err", err,
		)

		b.send(ctx, chatID, liveUnavailableText)
	}
}

func (b *Bot) sendFeeQuote(ctx context.Context, chatID int64) {
	params, err := b.quotes.DefaultParams(ctx)
	if err != nil {
		b.logger.Error(
			"unable to read fee params",
			"chat_id", chatID,
			"err", err,
		)

		b.send(ctx, chatID, feeUnavailableText)

		return
	}

	entry, err := b.quotes.Quote(ctx, params)
	if err != nil {
		b.logger.Error(
			"unable to quote fee",
			"chat_id", chatID,
			"err", err,
		)

		b.send(ctx, chatID, feeUnavailableText)

		return
	}

	b.send(ctx, chatID, entry.Text)
}

func (b *Bot) fetchReferenceRate(ctx context.Context, chatID int64) {
	if b.reference == nil {
		b.send(ctx, chatID, referenceOffText)

		return
	}

	rate, err := b.reference.Rate(ctx)
	if err != nil {
		b.logger.Error(
			"unable to fetch reference rate",
			"err", err,
		)

		b.send(ctx, chatID, referenceErrorText)

		return
	}

	if err = b.settings.SetReferenceRate(ctx, rate); err != nil {
		b.settingError(ctx, chatID, err)

		return
	}

	b.send(ctx, chatID, fmt.Sprintf(rateFetchedText, rate))
}

func (b *Bot) settingError(ctx context.Context, chatID int64, err error) {
	b.logger.Error(
		"unable to save setting",
		"chat_id", chatID,
		"err", err,
	)

	b.send(ctx, chatID, settingErrorText)
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.adminChatID != 0 && chatID == b.adminChatID
}

// spawn runs the command work in the background, so the update loop isn't held up
func (b *Bot) spawn(fn func()) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		fn()
	}()
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.channel.SendText(ctx, chatID, text, nil); err != nil {
		b.logger.Error(
			"unable to send message",
			"chat_id", chatID,
			"err", err,
		)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
