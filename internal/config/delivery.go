package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// MailConfig holds SMTP delivery settings. Mail is disabled unless a host
// and at least one recipient are configured.
type MailConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	From          string        `yaml:"from"`
	Recipients    []string      `yaml:"recipients"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Enabled reports whether mail delivery is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && len(c.Recipients) > 0
}

// Sender returns the envelope sender, defaulting to the SMTP username.
func (c MailConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Validate validates mail configuration. A disabled channel is always valid.
func (c MailConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SMTP_PORT: %d", c.Port)
	}
	if c.Sender() == "" {
		return errors.New("MAIL_FROM or SMTP_USERNAME is required")
	}
	if c.Timeout <= 0 {
		return errors.New("MAIL_TIMEOUT must be greater than 0")
	}
	return nil
}

const (
	// ChatFormatBlocks posts a structured block payload.
	ChatFormatBlocks = "blocks"
	// ChatFormatText posts the single-message plain text rendering.
	ChatFormatText = "text"
)

// ChatConfig holds chat webhook settings. Disabled without a webhook URL.
type ChatConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Channel    string        `yaml:"channel"`
	Username   string        `yaml:"username"`
	Format     string        `yaml:"format"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Enabled reports whether chat delivery is configured.
func (c ChatConfig) Enabled() bool {
	return c.WebhookURL != ""
}

// Validate validates chat configuration.
func (c ChatConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Format != ChatFormatBlocks && c.Format != ChatFormatText {
		return fmt.Errorf("invalid CHAT_FORMAT: %s (must be: blocks, text)", c.Format)
	}
	if c.Timeout <= 0 {
		return errors.New("CHAT_TIMEOUT must be greater than 0")
	}
	return nil
}

// TelegramConfig holds Telegram bot settings. Disabled without a token and chat ids.
type TelegramConfig struct {
	APIURL   string        `yaml:"api_url"`
	BotToken string        `yaml:"bot_token"`
	ChatIDs  []int64       `yaml:"chat_ids"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether Telegram delivery is configured.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && len(c.ChatIDs) > 0
}

// Validate validates Telegram configuration.
func (c TelegramConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.APIURL == "" {
		return errors.New("TELEGRAM_API_URL must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("TELEGRAM_TIMEOUT must be greater than 0")
	}
	return nil
}

// DefaultMailConfig returns mail defaults.
func DefaultMailConfig() MailConfig {
	return MailConfig{
		Port:          587,
		SubjectPrefix: "Jira Daily Report",
		Timeout:       30 * time.Second,
	}
}

// DefaultChatConfig returns chat defaults.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Username: "Jira Bot",
		Format:   ChatFormatBlocks,
		Timeout:  15 * time.Second,
	}
}

// DefaultTelegramConfig returns Telegram defaults.
func DefaultTelegramConfig() TelegramConfig {
	return TelegramConfig{
		APIURL:  "https://api.telegram.org",
		Timeout: 10 * time.Second,
	}
}

func (c MailConfig) withEnv() MailConfig {
	return MailConfig{
		Host:          GetEnv("SMTP_HOST", c.Host),
		Port:          GetEnvInt("SMTP_PORT", c.Port),
		Username:      GetEnv("SMTP_USERNAME", c.Username),
		Password:      GetEnv("SMTP_PASSWORD", c.Password),
		From:          GetEnv("MAIL_FROM", c.From),
		Recipients:    GetEnvList("MAIL_RECIPIENTS", c.Recipients),
		SubjectPrefix: GetEnv("MAIL_SUBJECT_PREFIX", c.SubjectPrefix),
		Timeout:       GetEnvDuration("MAIL_TIMEOUT", c.Timeout),
	}
}

func (c ChatConfig) withEnv() ChatConfig {
	return ChatConfig{
		WebhookURL: GetEnv("CHAT_WEBHOOK_URL", c.WebhookURL),
		Channel:    GetEnv("CHAT_CHANNEL", c.Channel),
		Username:   GetEnv("CHAT_USERNAME", c.Username),
		Format:     GetEnv("CHAT_FORMAT", c.Format),
		Timeout:    GetEnvDuration("CHAT_TIMEOUT", c.Timeout),
	}
}

func (c TelegramConfig) withEnv() TelegramConfig {
	ids := c.ChatIDs
	if raw := GetEnvList("TELEGRAM_CHAT_IDS", nil); raw != nil {
		ids = parseInt64s(raw)
	}
	return TelegramConfig{
		APIURL:   GetEnv("TELEGRAM_API_URL", c.APIURL),
		BotToken: GetEnv("TELEGRAM_BOT_TOKEN", c.BotToken),
		ChatIDs:  ids,
		Timeout:  GetEnvDuration("TELEGRAM_TIMEOUT", c.Timeout),
	}
}

// parseInt64s keeps only the items that parse as integers.
func parseInt64s(items []string) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := strconv.ParseInt(item, 10, 64)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}
