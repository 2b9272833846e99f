package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/render"
)

// WebhookChannel is the name of the chat webhook channel.
const WebhookChannel = "chat"

// Webhook posts the digest to a Slack compatible incoming webhook.
type Webhook struct {
	cfg    config.ChatConfig
	http   *http.Client
	logger *zap.SugaredLogger
}

// NewWebhook creates a chat webhook channel.
func NewWebhook(cfg config.ChatConfig, logger *zap.SugaredLogger) *Webhook {
	return &Webhook{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Name returns the channel name.
func (w *Webhook) Name() string { return WebhookChannel }

// Payload returns the message posted for bundle.
func (w *Webhook) Payload(bundle render.Bundle) render.Message {
	msg := bundle.Chat
	if w.cfg.Format == config.ChatFormatText {
		msg = render.Message{Text: render.EscapeMrkdwn(bundle.PlainText)}
	}
	msg.Channel = w.cfg.Channel
	msg.Username = w.cfg.Username
	return msg
}

// Send posts the digest once.
func (w *Webhook) Send(ctx context.Context, bundle render.Bundle) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	payload := w.Payload(bundle)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: chat: encoding payload: %w", ErrDeliveryFailed, err)
	}
	w.logger.Debugw("posting chat message", "format", w.cfg.Format, "blocks", len(payload.Blocks), "bytes", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: chat: building request: %w", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: chat: %w", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: chat webhook status=%d body=%s",
			ErrDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
