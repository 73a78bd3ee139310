// Package telegram talks to the Telegram Bot API and runs the long-polling
// transport.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/config"
)

// DefaultAPIEndpoint is the Bot API URL template (token, method).
const DefaultAPIEndpoint = tgbotapi.APIEndpoint

const maxLoggedText = 1000

// ErrTransport wraps network-level failures; the token is scrubbed from the message.
var ErrTransport = errors.New("telegram: transport error")

// APIError is a response with "ok": false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// IsBlocked reports whether err means the user blocked the bot or the chat
// is gone.
func IsBlocked(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == http.StatusForbidden {
		return true
	}
	d := strings.ToLower(apiErr.Description)
	return strings.Contains(d, "chat not found") || strings.Contains(d, "user is deactivated")
}

// Media references a photo or video by Telegram file id or by URL.
type Media struct {
	FileID string
	URL    string
}

func (m Media) data() (tgbotapi.RequestFileData, error) {
	switch {
	case m.FileID != "":
		return tgbotapi.FileID(m.FileID), nil
	case m.URL != "":
		return tgbotapi.FileURL(m.URL), nil
	}
	return nil, errors.New("telegram: media has neither file id nor url")
}

// Client sends outbound Bot API requests. It never calls getMe.
type Client struct {
	api       *tgbotapi.BotAPI
	token     string
	endpoint  string
	parseMode config.ParseMode
}

// New builds a Client. httpClient may be nil; its timeout must exceed the
// long-poll timeout.
func New(cfg config.TelegramConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := time.Duration(cfg.PollTimeoutSec)*time.Second + 15*time.Second
		if timeout < 30*time.Second {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	api := &tgbotapi.BotAPI{Token: cfg.BotToken, Client: httpClient, Buffer: 100}
	api.SetAPIEndpoint(endpoint)
	return &Client{api: api, token: cfg.BotToken, endpoint: endpoint, parseMode: cfg.ParseMode}
}

// SendText sends a text message and returns its message id.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ParseMode = c.textParseMode(text)
	if m := SanitizeMarkup(markup); m != nil {
		msg.ReplyMarkup = m
	}
	return c.send(ctx, "sendMessage", chatID, text, msg)
}

// SendPhoto sends a photo with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, media Media, caption string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	file, err := media.data()
	if err != nil {
		return 0, err
	}
	p := tgbotapi.NewPhoto(chatID, file)
	p.Caption = caption
	if m := SanitizeMarkup(markup); m != nil {
		p.ReplyMarkup = m
	}
	return c.send(ctx, "sendPhoto", chatID, caption, p)
}

// SendVideo sends a video with an optional caption.
func (c *Client) SendVideo(ctx context.Context, chatID int64, media Media, caption string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	file, err := media.data()
	if err != nil {
		return 0, err
	}
	v := tgbotapi.NewVideo(chatID, file)
	v.Caption = caption
	if m := SanitizeMarkup(markup); m != nil {
		v.ReplyMarkup = m
	}
	return c.send(ctx, "sendVideo", chatID, caption, v)
}

// RemoveKeyboard replaces a message's inline keyboard with an empty one.
func (c *Client) RemoveKeyboard(ctx context.Context, chatID int64, messageID int) error {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	return c.request(ctx, "editMessageReplyMarkup", chatID, tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty))
}

// DeleteMessage deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return c.request(ctx, "deleteMessage", chatID, tgbotapi.NewDeleteMessage(chatID, messageID))
}

// AnswerCallback acknowledges a button press; text may be empty.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.request(ctx, "answerCallbackQuery", 0, tgbotapi.NewCallback(callbackID, text))
}

// DeleteWebhook removes any webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.request(ctx, "deleteWebhook", 0, tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
}

// GetUpdates long-polls for updates. offset <= 0 means "no offset".
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]tgbotapi.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.UpdateConfig{Timeout: timeoutSec}
	if offset > 0 {
		cfg.Offset = int(offset)
	}
	updates, err := c.api.GetUpdates(cfg)
	if err != nil {
		return nil, c.wrap("getUpdates", err)
	}
	return updates, nil
}

func (c *Client) send(ctx context.Context, method string, chatID int64, text string, msg tgbotapi.Chattable) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.logOutbound(method, chatID, text)
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, c.wrap(method, err)
	}
	return sent.MessageID, nil
}

func (c *Client) request(ctx context.Context, method string, chatID int64, req tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logOutbound(method, chatID, "")
	if _, err := c.api.Request(req); err != nil {
		return c.wrap(method, err)
	}
	return nil
}

func (c *Client) logOutbound(method string, chatID int64, text string) {
	ev := log.Debug().Str("component", "telegram").Str("method", method).
		Str("endpoint", fmt.Sprintf(c.endpoint, MaskToken(c.token), method))
	if chatID != 0 {
		ev = ev.Int64("chat_id", chatID)
	}
	if text != "" {
		ev = ev.Str("text", clip(text, maxLoggedText))
	}
	ev.Msg("telegram outbound")
}

func (c *Client) wrap(method string, err error) error {
	var (
		apiErr *tgbotapi.Error
		apiVal tgbotapi.Error
	)
	if !errors.As(err, &apiErr) && errors.As(err, &apiVal) {
		apiErr = &apiVal
	}
	if apiErr != nil {
		out := &APIError{Method: method, Code: apiErr.Code, Description: scrub(apiErr.Message, c.token)}
		log.Warn().Str("component", "telegram").Str("method", method).Int("code", out.Code).Str("description", out.Description).Msg("telegram api error")
		return out
	}
	msg := scrub(err.Error(), c.token)
	log.Warn().Str("component", "telegram").Str("method", method).Str("error", msg).Msg("telegram request failed")
	return fmt.Errorf("%w: %s: %s", ErrTransport, method, msg)
}

// textParseMode maps the configured parse mode for a given text. HTML is
// only used when the text has no markup characters.
func (c *Client) textParseMode(text string) string {
	switch c.parseMode {
	case config.ParseModeMarkdown:
		return tgbotapi.ModeMarkdown
	case config.ParseModeHTML:
		if strings.ContainsAny(text, "<>&") {
			return ""
		}
		return tgbotapi.ModeHTML
	}
	return ""
}
