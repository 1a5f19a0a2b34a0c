//nolint:tagliatelle // Telegram Bot API uses snake case
package telegram

import (
	"encoding/json"
	"fmt"
)

// apiResponse is the envelope of every Bot API response
type apiResponse struct {
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	OK          bool            `json:"ok"`
}

// APIError is an unsuccessful Bot API response
type APIError struct {
	Method      string
	Description string
	Code        int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

// Update is a single Bot API update
type Update struct {
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
	UpdateID      int64          `json:"update_id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
	MessageID int64  `json:"message_id"`
}

type CallbackQuery struct {
	Message *Message `json:"message,omitempty"`
	ID      string   `json:"id"`
	Data    string   `json:"data"`
}

// BotCommand is a single entry of the bot command menu
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

type inlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ReplyMarkup *inlineKeyboardMarkup `json:"reply_markup,omitempty"`
	Text        string                `json:"text"`
	ChatID      int64                 `json:"chat_id"`
}

type editMessageTextRequest struct {
	ReplyMarkup *inlineKeyboardMarkup `json:"reply_markup,omitempty"`
	Text        string                `json:"text"`
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
}

type editMessageReplyMarkupRequest struct {
	ReplyMarkup *inlineKeyboardMarkup `json:"reply_markup"`
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type setMyCommandsRequest struct {
	Commands []BotCommand `json:"commands"`
}

type getUpdatesRequest struct {
	AllowedUpdates []string `json:"allowed_updates"`
	Offset         int64    `json:"offset"`
	Timeout        int      `json:"timeout"`
}
