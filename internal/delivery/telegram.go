package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/render"
)

// TelegramChannel is the name of the Telegram channel.
const TelegramChannel = "telegram"

// maxTelegramText is the Telegram message length limit.
const maxTelegramText = 4096

// Telegram sends the plain text digest to every configured chat.
type Telegram struct {
	cfg    config.TelegramConfig
	http   *http.Client
	logger *zap.SugaredLogger
}

// NewTelegram creates a Telegram channel.
func NewTelegram(cfg config.TelegramConfig, logger *zap.SugaredLogger) *Telegram {
	return &Telegram{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Name returns the channel name.
func (t *Telegram) Name() string { return TelegramChannel }

// Send delivers the digest to every chat. It fails when any chat fails,
// after all chats have been attempted.
func (t *Telegram) Send(ctx context.Context, bundle render.Bundle) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	text := render.Truncate(bundle.PlainText, maxTelegramText-len(render.Ellipsis))

	var errs []error
	for _, chatID := range t.cfg.ChatIDs {
		if err := t.sendMessage(ctx, chatID, text); err != nil {
			t.logger.Warnw("telegram chat failed", "chat_id", chatID, "error", err)
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: telegram: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// sendMessage sends without parse_mode so issue text is never parsed as markup.
func (t *Telegram) sendMessage(ctx context.Context, chatID int64, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.cfg.APIURL, "/"), t.cfg.BotToken)
	body, err := json.Marshal(map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		// The request URL carries the bot token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("telegram sendMessage chat=%d: %w", chatID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram sendMessage chat=%d status=%d body=%s",
			chatID, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
