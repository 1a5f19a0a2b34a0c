package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TarasTrach/NexusBot/chat"
	"github.com/TarasTrach/NexusBot/chat/mock"
)

const testChatID = int64(42)

type mockDefaults struct {
	rate     float64
	discount float64
	err      error
}

func (m *mockDefaults) ReferenceRate(_ context.Context) (float64, error) {
	return m.rate, m.err
}

func (m *mockDefaults) DefaultDiscount(_ context.Context) (float64, error) {
	return m.discount, m.err
}

// completions records the completed sessions
type completions struct {
	params []Params
	flows  []Flow
	mux    sync.Mutex
}

func (c *completions) onComplete(_ context.Context, _ int64, flow Flow, params Params) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.flows = append(c.flows, flow)
	c.params = append(c.params, params)
}

func (c *completions) count() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	return len(c.params)
}

func text(value string) *chat.TextMessage {
	return &chat.TextMessage{
		ChatID: testChatID,
		Text:   value,
	}
}

// lastPromptID returns the message id of the last sent message
func lastPromptID(t *testing.T, channel *mock.Channel) int64 {
	t.Helper()

	sent := channel.Sent()
	require.NotEmpty(t, sent)

	return sent[len(sent)-1].MessageID
}

func selectChoice(t *testing.T, channel *mock.Channel, data string) *chat.Selection {
	t.Helper()

	return &chat.Selection{
		ID:        "cb-" + data,
		Data:      data,
		ChatID:    testChatID,
		MessageID: lastPromptID(t, channel),
	}
}

func TestRegistry_ExchangeFlow(t *testing.T) {
	t.Parallel()

	t.Run("stored rate confirmed", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{rate: 41.5, discount: 5})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, done.onComplete)
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingAmount, r.State(testChatID))

		assert.True(t, r.HandleText(ctx, text("300")))
		assert.Equal(t, StateAwaitingBank, r.State(testChatID))
		assert.True(t, channel.Sent()[1].Controls.Has(BankMono))

		assert.True(t, r.HandleSelection(ctx, selectChoice(t, channel, BankMono)))
		assert.Equal(t, StateAwaitingRateConfirmation, r.State(testChatID))
		assert.Contains(t, channel.Sent()[2].Text, "41.50")

		assert.True(t, r.HandleSelection(ctx, selectChoice(t, channel, RateOK)))
		assert.Equal(t, StateIdle, r.State(testChatID))

		require.Equal(t, 1, done.count())
		assert.Equal(t, FlowExchange, done.flows[0])
		assert.Equal(t, Params{
			Bank:     BankMono,
			Amount:   300,
			Rate:     41.5,
			Discount: 5,
		}, done.params[0])

		// Every choice was acknowledged
		assert.Len(t, channel.Acks(), 2)

		// One message per transition
		assert.Len(t, channel.Sent(), 3)
	})

	t.Run("stored rate changed", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{rate: 41.5, discount: 4})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, done.onComplete)
		require.NoError(t, err)

		r.HandleText(ctx, text("250,5"))
		r.HandleSelection(ctx, selectChoice(t, channel, BankPrivat))
		r.HandleSelection(ctx, selectChoice(t, channel, RateChange))

		assert.Equal(t, StateAwaitingRateValue, r.State(testChatID))

		r.HandleText(ctx, text("42,1"))

		require.Equal(t, 1, done.count())
		assert.Equal(t, Params{
			Bank:        BankPrivat,
			Amount:      250.5,
			Rate:        42.1,
			Discount:    4,
			RateChanged: true,
		}, done.params[0])
	})

	t.Run("no stored rate", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{discount: 5})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, done.onComplete)
		require.NoError(t, err)

		r.HandleText(ctx, text("300"))
		r.HandleSelection(ctx, selectChoice(t, channel, BankA))

		// The confirmation step is skipped
		assert.Equal(t, StateAwaitingRateValue, r.State(testChatID))

		r.HandleText(ctx, text("41.5"))

		require.Equal(t, 1, done.count())
		assert.True(t, done.params[0].RateChanged)
		assert.InDelta(t, 41.5, done.params[0].Rate, 1e-9)
	})
}

func TestRegistry_InvalidInput(t *testing.T) {
	t.Parallel()

	t.Run("non-numeric amount", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		sentBefore := len(channel.Sent())

		assert.True(t, r.HandleText(ctx, text("abc")))

		assert.Equal(t, StateAwaitingAmount, r.State(testChatID))
		require.Len(t, channel.Sent(), sentBefore+1)
		assert.Equal(t, errInvalidAmount, channel.Sent()[sentBefore].Text)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		r.HandleText(ctx, text("0"))
		r.HandleText(ctx, text("-10"))

		assert.Equal(t, StateAwaitingAmount, r.State(testChatID))
		assert.Equal(t, []string{promptAmount, errInvalidAmount, errInvalidAmount}, channel.SentTexts())
	})

	t.Run("unknown choice", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		r.HandleText(ctx, text("300"))

		sentBefore := len(channel.Sent())

		assert.True(t, r.HandleSelection(ctx, selectChoice(t, channel, "Revolut")))

		assert.Equal(t, StateAwaitingBank, r.State(testChatID))
		require.Len(t, channel.Sent(), sentBefore+1)
		assert.Equal(t, errInvalidChoice, channel.Sent()[sentBefore].Text)
	})

	t.Run("stale prompt", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		r.HandleText(ctx, text("300"))

		assert.False(t, r.HandleSelection(ctx, &chat.Selection{
			ID:        "cb",
			Data:      BankMono,
			ChatID:    testChatID,
			MessageID: 9999,
		}))
		assert.Equal(t, StateAwaitingBank, r.State(testChatID))
	})

	t.Run("text while awaiting a choice", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		r.HandleText(ctx, text("300"))

		assert.False(t, r.HandleText(ctx, text("Monobank")))
		assert.Equal(t, StateAwaitingBank, r.State(testChatID))
	})

	t.Run("discount out of range", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowSettings, nil)
		require.NoError(t, err)

		r.HandleText(ctx, text("100"))

		assert.Equal(t, StateAwaitingDiscount, r.State(testChatID))
		assert.Equal(t, []string{promptDiscount, errInvalidDiscount}, channel.SentTexts())
	})
}

func TestRegistry_OtherFlows(t *testing.T) {
	t.Parallel()

	t.Run("rate flow", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowRate, done.onComplete)
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingRateValue, r.State(testChatID))

		r.HandleText(ctx, text("41,75"))

		require.Equal(t, 1, done.count())
		assert.Equal(t, FlowRate, done.flows[0])
		assert.InDelta(t, 41.75, done.params[0].Rate, 1e-9)
	})

	t.Run("settings flow", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowSettings, done.onComplete)
		require.NoError(t, err)

		r.HandleText(ctx, text("4.5"))
		assert.Equal(t, StateAwaitingAmount, r.State(testChatID))

		r.HandleText(ctx, text("500"))

		require.Equal(t, 1, done.count())
		assert.Equal(t, FlowSettings, done.flows[0])
		assert.InDelta(t, 4.5, done.params[0].Discount, 1e-9)
		assert.InDelta(t, 500.0, done.params[0].Amount, 1e-9)
	})
}

func TestRegistry_Replace(t *testing.T) {
	t.Parallel()

	t.Run("new session tears down the previous one", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			first   = &completions{}
			second  = &completions{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		prev, err := r.Begin(ctx, testChatID, FlowRate, first.onComplete)
		require.NoError(t, err)

		_, err = r.Begin(ctx, testChatID, FlowRate, second.onComplete)
		require.NoError(t, err)

		assert.Equal(t, StateAwaitingRateValue, prev.State())

		// A single input is delivered to the new session only
		assert.True(t, r.HandleText(ctx, text("41.5")))

		assert.Zero(t, first.count())
		assert.Equal(t, 1, second.count())

		// The torn down session doesn't listen anymore
		params, handled := prev.handleText(ctx, "41.5")
		assert.Nil(t, params)
		assert.False(t, handled)
	})

	t.Run("chats are independent", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			channel = &mock.Channel{}
			done    = &completions{}
			r       = NewRegistry(channel, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowRate, done.onComplete)
		require.NoError(t, err)

		_, err = r.Begin(ctx, testChatID+1, FlowExchange, done.onComplete)
		require.NoError(t, err)

		assert.Equal(t, StateAwaitingRateValue, r.State(testChatID))
		assert.Equal(t, StateAwaitingAmount, r.State(testChatID+1))
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()

		var (
			ctx = context.Background()
			r   = NewRegistry(&mock.Channel{}, &mockDefaults{})
		)

		_, err := r.Begin(ctx, testChatID, FlowRate, nil)
		require.NoError(t, err)

		assert.True(t, r.Cancel(testChatID))
		assert.False(t, r.Cancel(testChatID))
		assert.False(t, r.HandleText(ctx, text("41.5")))
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(&mock.Channel{}, &mockDefaults{})

		assert.False(t, r.HandleText(context.Background(), text("300")))
		assert.Equal(t, StateIdle, r.State(testChatID))
	})

	t.Run("first prompt fails", func(t *testing.T) {
		t.Parallel()

		channel := &mock.Channel{
			SendTextFn: func(_ context.Context, _ int64, _ string, _ *chat.Controls) error {
				return errors.New("blocked by user")
			},
		}

		r := NewRegistry(channel, &mockDefaults{})

		_, err := r.Begin(context.Background(), testChatID, FlowExchange, nil)
		require.Error(t, err)

		assert.Equal(t, StateIdle, r.State(testChatID))
	})

	t.Run("choice prompt fails", func(t *testing.T) {
		t.Parallel()

		var (
			ctx     = context.Background()
			failing atomic.Bool
			channel = &mock.Channel{
				SendTextFn: func(_ context.Context, _ int64, _ string, _ *chat.Controls) error {
					if failing.Load() {
						return errors.New("network down")
					}

					return nil
				},
			}
			r = NewRegistry(channel, &mockDefaults{rate: 41.5})
		)

		_, err := r.Begin(ctx, testChatID, FlowExchange, nil)
		require.NoError(t, err)

		require.True(t, r.HandleText(ctx, text("300")))

		bankPrompt := lastPromptID(t, channel)

		// The rate confirmation prompt is lost
		failing.Store(true)

		assert.True(t, r.HandleSelection(ctx, selectChoice(t, channel, BankMono)))
		assert.Equal(t, StateAwaitingBank, r.State(testChatID))

		failing.Store(false)

		// Presses on other messages don't advance the session
		assert.False(t, r.HandleSelection(ctx, &chat.Selection{
			ID:        "cb-old",
			Data:      RateOK,
			ChatID:    testChatID,
			MessageID: 0,
		}))
		assert.Equal(t, StateAwaitingBank, r.State(testChatID))

		// The bank prompt still takes the choice
		assert.True(t, r.HandleSelection(ctx, &chat.Selection{
			ID:        "cb-retry",
			Data:      BankMono,
			ChatID:    testChatID,
			MessageID: bankPrompt,
		}))
		assert.Equal(t, StateAwaitingRateConfirmation, r.State(testChatID))
	})
}

func TestRegistry_ConcurrentInput(t *testing.T) {
	t.Parallel()

	var (
		ctx     = context.Background()
		channel = &mock.Channel{}
		done    = &completions{}
		r       = NewRegistry(channel, &mockDefaults{})
		wg      sync.WaitGroup
	)

	_, err := r.Begin(ctx, testChatID, FlowRate, done.onComplete)
	require.NoError(t, err)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			r.HandleText(ctx, text("41.5"))
		}()
	}

	wg.Wait()

	// Only one input can complete the session
	assert.Equal(t, 1, done.count())
}
