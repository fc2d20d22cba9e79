package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTelegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API's sendMessage method.
type Telegram struct {
	client *resty.Client
	token  string
	chatID string
}

func NewTelegram(apiBase, token, chatID string) *Telegram {
	if apiBase == "" {
		apiBase = DefaultTelegramAPI
	}
	client := resty.New().
		SetBaseURL(apiBase).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	return &Telegram{client: client, token: token, chatID: chatID}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	var out apiResponse
	res, err := t.client.R().
		SetContext(ctx).
		SetPathParam("token", t.token).
		SetBody(sendMessageRequest{ChatID: t.chatID, Text: text}).
		SetResult(&out).
		SetError(&out).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if res.IsError() || !out.OK {
		return fmt.Errorf("telegram: sendMessage failed (status=%d): %s", res.StatusCode(), out.Description)
	}
	return nil
}
