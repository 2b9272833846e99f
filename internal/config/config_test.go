package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes validation with Jira as the source.
func validConfig() Config {
	cfg := Default()
	cfg.Tracker.BaseURL = "https://example.atlassian.net"
	cfg.Tracker.Email = "bot@example.com"
	cfg.Tracker.APIToken = "token"
	return cfg
}

func TestLoadFromEnv_DefaultValues(t *testing.T) {
	t.Setenv("REPORT_PROJECTS", "")
	t.Setenv("REPORT_AGE_THRESHOLD_DAYS", "")
	t.Setenv("TRACKER_SOURCE", "")
	t.Setenv("GIN_MODE", "")

	cfg := LoadFromEnv()
	assert.Equal(t, SourceJira, cfg.Tracker.Source)
	assert.Empty(t, cfg.Report.Projects)
	assert.Equal(t, 50, cfg.Report.AgeThresholdDays)
	assert.Equal(t, 5, cfg.Report.DiscoveryLimit)
	assert.Equal(t, "Blocked", cfg.Report.BlockedStatus)
	assert.Equal(t, "In Progress", cfg.Report.InProgressStatus)
	assert.Equal(t, "Backlog", cfg.Report.BacklogStatus)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, ChatFormatBlocks, cfg.Chat.Format)
	assert.Equal(t, "0 9 * * *", cfg.Schedule.Cron)
	assert.Equal(t, "release", cfg.GinMode)
}

func TestLoadFromEnv_CustomValues(t *testing.T) {
	t.Setenv("REPORT_PROJECTS", "DEVOPS,EIT")
	t.Setenv("REPORT_AGE_THRESHOLD_DAYS", "30")
	t.Setenv("MAIL_RECIPIENTS", "a@example.com, b@example.com")
	t.Setenv("TELEGRAM_CHAT_IDS", "-100123,notanumber,42")
	t.Setenv("CHAT_FORMAT", "text")
	t.Setenv("REPORT_RUN_TIMEOUT", "90s")

	cfg := LoadFromEnv()
	assert.Equal(t, []string{"DEVOPS", "EIT"}, cfg.Report.Projects)
	assert.Equal(t, 30, cfg.Report.AgeThresholdDays)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Mail.Recipients)
	assert.Equal(t, []int64{-100123, 42}, cfg.Telegram.ChatIDs)
	assert.Equal(t, ChatFormatText, cfg.Chat.Format)
	assert.Equal(t, 90*time.Second, cfg.Report.RunTimeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing tracker endpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracker.BaseURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.Contains(t, err.Error(), "tracker config validation failed")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracker.APIToken = ""
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("personal access token replaces basic auth", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracker.Email = ""
		cfg.Tracker.APIToken = ""
		cfg.Tracker.PAT = "pat"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("database source needs no jira settings", func(t *testing.T) {
		cfg := Default()
		cfg.Tracker.Source = SourceDatabase
		cfg.Database.Driver = "sqlite"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("database source with bad driver", func(t *testing.T) {
		cfg := Default()
		cfg.Tracker.Source = SourceDatabase
		cfg.Database.Driver = "mysql"
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "database config validation failed")
	})

	t.Run("unconfigured delivery channels are valid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mail = MailConfig{}
		cfg.Chat = ChatConfig{}
		cfg.Telegram = TelegramConfig{}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("mail without sender", func(t *testing.T) {
		cfg := validConfig()
		cfg.Mail.Host = "smtp.example.com"
		cfg.Mail.Recipients = []string{"team@example.com"}
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "mail config validation failed")
	})

	t.Run("invalid chat format", func(t *testing.T) {
		cfg := validConfig()
		cfg.Chat.WebhookURL = "https://hooks.example.com/T/B/x"
		cfg.Chat.Format = "cards"
		assert.ErrorContains(t, cfg.Validate(), "invalid CHAT_FORMAT")
	})

	t.Run("invalid report timezone", func(t *testing.T) {
		cfg := validConfig()
		cfg.Report.TimeZone = "Mars/Olympus"
		assert.ErrorContains(t, cfg.Validate(), "report config validation failed")
	})

	t.Run("invalid gin mode", func(t *testing.T) {
		cfg := validConfig()
		cfg.GinMode = "invalid"
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "invalid GIN_MODE")
	})
}

func TestLoad(t *testing.T) {
	t.Run("yaml file with env override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "digest.yaml")
		content := `
tracker:
  base_url: https://file.atlassian.net
  email: file@example.com
  api_token: file-token
report:
  projects: [OPS, WEB]
  age_threshold_days: 90
chat:
  webhook_url: https://hooks.example.com/T/B/x
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("REPORT_AGE_THRESHOLD_DAYS", "70")
		t.Setenv("REPORT_PROJECTS", "")
		t.Setenv("JIRA_BASE_URL", "")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://file.atlassian.net", cfg.Tracker.BaseURL)
		assert.Equal(t, []string{"OPS", "WEB"}, cfg.Report.Projects)
		assert.Equal(t, 70, cfg.Report.AgeThresholdDays)
		assert.True(t, cfg.Chat.Enabled())
		assert.Equal(t, ChatFormatBlocks, cfg.Chat.Format)
		assert.Equal(t, "Backlog", cfg.Report.BacklogStatus)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("report: [unterminated"), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("no file falls back to env", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("DIGEST_CONFIG_FILE", "")
		t.Setenv("JIRA_BASE_URL", "https://env.atlassian.net")
		t.Setenv("JIRA_EMAIL", "env@example.com")
		t.Setenv("JIRA_API_TOKEN", "env-token")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://env.atlassian.net", cfg.Tracker.BaseURL)
	})
}
