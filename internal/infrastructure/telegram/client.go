// Package telegram is a minimal Bot API client.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/metrics"
)

const parseModeHTML = "HTML"

// Telegram only accepts these characters in a webhook secret token.
var secretTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// APIError is a Bot API call that returned ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Client calls the Bot API for one bot token.
type Client struct {
	http     *resty.Client
	token    string
	validate *validator.Validate
}

var _ bot.Sender = (*Client)(nil)

// NewClient creates a client for baseURL (normally https://api.telegram.org).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/bot"+token).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "streak-api/1.0").
		SetTimeout(timeout)

	return &Client{http: client, token: token, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("secret_token", func(fl validator.FieldLevel) bool {
		return secretTokenPattern.MatchString(fl.Field().String())
	})
	return v
}

// SendMessage posts an HTML message with an optional reply keyboard.
func (c *Client) SendMessage(ctx context.Context, msg bot.OutgoingMessage) error {
	start := time.Now()

	req := sendMessageRequest{
		ChatID:    msg.ChatID,
		Text:      msg.Text,
		ParseMode: parseModeHTML,
	}
	if msg.Keyboard != nil {
		req.ReplyMarkup = toMarkup(*msg.Keyboard)
	}

	err := c.call(ctx, "sendMessage", req, nil)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordOutbound(status, time.Since(start).Seconds())
	return err
}

func (c *Client) SetWebhook(ctx context.Context, params WebhookParams) error {
	if err := c.validate.Struct(params); err != nil {
		return fmt.Errorf("invalid webhook params: %w", err)
	}
	return c.call(ctx, "setWebhook", setWebhookRequest{
		URL:                params.URL,
		SecretToken:        params.SecretToken,
		DropPendingUpdates: params.DropPendingUpdates,
		AllowedUpdates:     params.AllowedUpdates,
	}, nil)
}

func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	return c.call(ctx, "deleteWebhook", deleteWebhookRequest{DropPendingUpdates: dropPending}, nil)
}

func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	var info WebhookInfo
	if err := c.call(ctx, "getWebhookInfo", struct{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&env).
		SetError(&env).
		Post("/" + method)
	if err != nil {
		// transport errors quote the request URL, which embeds the token
		return fmt.Errorf("telegram %s: %s", method, c.redact(err.Error()))
	}

	if resp.IsError() || !env.OK {
		description := env.Description
		if description == "" {
			description = resp.Status()
		}
		return &APIError{Method: method, Code: resp.StatusCode(), Description: description}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) redact(s string) string {
	if c.token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.token, "<redacted>")
}

func toMarkup(k bot.Keyboard) *ReplyKeyboardMarkup {
	rows := make([][]KeyboardButton, 0, len(k.Rows))
	for _, labels := range k.Rows {
		row := make([]KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, KeyboardButton{Text: label})
		}
		rows = append(rows, row)
	}
	return &ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: k.Resize}
}
