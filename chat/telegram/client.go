package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TarasTrach/NexusBot/chat"
)

const apiURL = "https://api.telegram.org/bot"

const (
	requestTimeout = 30 * time.Second
	pollTimeout    = 30 // long-polling window, in seconds
)

// Client is the Telegram Bot API messaging channel
type Client struct {
	logger *slog.Logger

	client     *http.Client
	pollClient *http.Client // outlives the long-polling window

	baseURL string
}

// NewClient creates a new Bot API client for the bot token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		client: &http.Client{
			Timeout: requestTimeout,
		},
		pollClient: &http.Client{
			Timeout: (pollTimeout + 5) * time.Second,
		},
		baseURL: apiURL + token + "/",
	}

	// Apply the options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, controls *chat.Controls) (int64, error) {
	req := sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: toMarkup(controls),
	}

	var sent Message
	if err := c.call(ctx, c.client, "sendMessage", req, &sent); err != nil {
		return 0, err
	}

	return sent.MessageID, nil
}

func (c *Client) EditText(
	ctx context.Context,
	chatID, messageID int64,
	text string,
	controls *chat.Controls,
) error {
	req := editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: toMarkup(controls),
	}

	return c.call(ctx, c.client, "editMessageText", req, nil)
}

func (c *Client) EditControls(ctx context.Context, chatID, messageID int64, controls *chat.Controls) error {
	markup := toMarkup(controls)
	if markup == nil {
		// An empty keyboard strips the controls
		markup = &inlineKeyboardMarkup{
			InlineKeyboard: [][]inlineKeyboardButton{},
		}
	}

	req := editMessageReplyMarkupRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: markup,
	}

	return c.call(ctx, c.client, "editMessageReplyMarkup", req, nil)
}

func (c *Client) AcknowledgeSelection(ctx context.Context, selectionID, feedback string) error {
	req := answerCallbackQueryRequest{
		CallbackQueryID: selectionID,
		Text:            feedback,
	}

	return c.call(ctx, c.client, "answerCallbackQuery", req, nil)
}

// SetCommands sets the bot command menu
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand) error {
	return c.call(ctx, c.client, "setMyCommands", setMyCommandsRequest{Commands: commands}, nil)
}

// GetUpdates long-polls for the updates following the offset
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        pollTimeout,
		AllowedUpdates: []string{"message", "callback_query"},
	}

	var updates []Update
	if err := c.call(ctx, c.pollClient, "getUpdates", req, &updates); err != nil {
		return nil, err
	}

	return updates, nil
}

// call executes a single Bot API method, decoding its result into dst (if any)
func (c *Client) call(ctx context.Context, client *http.Client, method string, payload, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("unable to create %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to execute %s request: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("unable to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if !apiResp.OK {
		if strings.Contains(apiResp.Description, "message is not modified") {
			return chat.ErrNotModified
		}

		return &APIError{
			Method:      method,
			Description: apiResp.Description,
			Code:        apiResp.ErrorCode,
		}
	}

	if dst == nil {
		return nil
	}

	if err = json.Unmarshal(apiResp.Result, dst); err != nil {
		return fmt.Errorf("unable to decode %s result: %w", method, err)
	}

	return nil
}

// toMarkup converts the controls into an inline keyboard. Empty controls yield nil
func toMarkup(controls *chat.Controls) *inlineKeyboardMarkup {
	if controls.Empty() {
		return nil
	}

	markup := &inlineKeyboardMarkup{
		InlineKeyboard: make([][]inlineKeyboardButton, 0, len(controls.Rows)),
	}

	for _, row := range controls.Rows {
		if len(row) == 0 {
			continue
		}

		buttons := make([]inlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, inlineKeyboardButton{
				Text:         button.Text,
				CallbackData: button.Data,
			})
		}

		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}

	return markup
}
