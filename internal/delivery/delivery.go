// Package delivery sends rendered digests over the configured channels.
package delivery

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/render"
)

var (
	// ErrDeliveryFailed indicates that a channel could not deliver the digest.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrNoChannels indicates that no delivery channel is configured.
	ErrNoChannels = errors.New("no delivery channel configured")
)

// Channel delivers a rendered digest. Send is attempted once per run.
type Channel interface {
	Name() string
	Send(ctx context.Context, bundle render.Bundle) error
}

// Result is the outcome of one channel.
type Result struct {
	Channel  string        `json:"channel"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether the channel delivered the digest.
func (r Result) OK() bool {
	return r.Err == nil
}

// AnySucceeded reports whether at least one channel delivered.
func AnySucceeded(results []Result) bool {
	for _, r := range results {
		if r.OK() {
			return true
		}
	}
	return false
}

// Deliver attempts every channel once, in order. A failing channel does not
// stop the others.
func Deliver(ctx context.Context, channels []Channel, bundle render.Bundle, logger *zap.SugaredLogger) []Result {
	results := make([]Result, 0, len(channels))
	for _, ch := range channels {
		start := time.Now()
		err := ch.Send(ctx, bundle)
		res := Result{Channel: ch.Name(), Err: err, Duration: time.Since(start)}
		results = append(results, res)

		if err != nil {
			logger.Errorw("delivery failed", "channel", res.Channel, "duration", res.Duration, "error", err)
			continue
		}
		logger.Infow("delivery succeeded", "channel", res.Channel, "duration", res.Duration)
	}
	return results
}

// FromConfig builds every enabled channel. Disabled channels are logged and skipped.
func FromConfig(cfg config.Config, logger *zap.SugaredLogger) []Channel {
	var channels []Channel

	if cfg.Mail.Enabled() {
		channels = append(channels, NewMail(cfg.Mail, logger))
	} else {
		logger.Infow("channel disabled", "channel", MailChannel, "reason", "SMTP_HOST or MAIL_RECIPIENTS not set")
	}

	if cfg.Chat.Enabled() {
		channels = append(channels, NewWebhook(cfg.Chat, logger))
	} else {
		logger.Infow("channel disabled", "channel", WebhookChannel, "reason", "CHAT_WEBHOOK_URL not set")
	}

	if cfg.Telegram.Enabled() {
		channels = append(channels, NewTelegram(cfg.Telegram, logger))
	} else {
		logger.Infow("channel disabled", "channel", TelegramChannel, "reason", "TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_IDS not set")
	}

	return channels
}
