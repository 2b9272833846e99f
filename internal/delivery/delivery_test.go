package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/render"
)

// mockChannel is a mock implementation of Channel for unit tests.
type mockChannel struct {
	mock.Mock
	name string
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) Send(ctx context.Context, bundle render.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func TestDeliver(t *testing.T) {
	t.Run("failing channel does not stop the others", func(t *testing.T) {
		failing := &mockChannel{name: "first"}
		failing.On("Send", mock.Anything, mock.Anything).Return(ErrDeliveryFailed).Once()
		working := &mockChannel{name: "second"}
		working.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		results := Deliver(context.Background(), []Channel{failing, working}, testBundle(), zap.NewNop().Sugar())
		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].Channel)
		assert.False(t, results[0].OK())
		assert.True(t, results[1].OK())
		assert.True(t, AnySucceeded(results))

		failing.AssertExpectations(t)
		working.AssertExpectations(t)
	})

	t.Run("all failing", func(t *testing.T) {
		ch := &mockChannel{name: "only"}
		ch.On("Send", mock.Anything, mock.Anything).Return(errors.New("down")).Once()

		results := Deliver(context.Background(), []Channel{ch}, testBundle(), zap.NewNop().Sugar())
		assert.False(t, AnySucceeded(results))
	})

	t.Run("no channels", func(t *testing.T) {
		results := Deliver(context.Background(), nil, testBundle(), zap.NewNop().Sugar())
		assert.Empty(t, results)
		assert.False(t, AnySucceeded(results))
	})
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, FromConfig(cfg, zap.NewNop().Sugar()))

	cfg.Mail = testMailConfig()
	cfg.Chat.WebhookURL = "https://hooks.example.com/x"
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatIDs = []int64{42}

	channels := FromConfig(cfg, zap.NewNop().Sugar())
	require.Len(t, channels, 3)
	assert.Equal(t, MailChannel, channels[0].Name())
	assert.Equal(t, WebhookChannel, channels[1].Name())
	assert.Equal(t, TelegramChannel, channels[2].Name())
}

func chatConfig(url, format string) config.ChatConfig {
	cfg := config.DefaultChatConfig()
	cfg.WebhookURL = url
	cfg.Channel = "#jira"
	cfg.Format = format
	return cfg
}

func TestWebhook_Send(t *testing.T) {
	t.Run("blocks", func(t *testing.T) {
		var got render.Message
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		hook := NewWebhook(chatConfig(srv.URL, config.ChatFormatBlocks), zap.NewNop().Sugar())
		require.NoError(t, hook.Send(context.Background(), testBundle()))

		assert.Equal(t, "Jira Daily Digest - 2024-06-01", got.Text)
		assert.Equal(t, "#jira", got.Channel)
		assert.Equal(t, "Jira Bot", got.Username)
		assert.Len(t, got.Blocks, 1)
	})

	t.Run("plain text fallback", func(t *testing.T) {
		var got render.Message
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
		defer srv.Close()

		hook := NewWebhook(chatConfig(srv.URL, config.ChatFormatText), zap.NewNop().Sugar())
		require.NoError(t, hook.Send(context.Background(), testBundle()))

		assert.Empty(t, got.Blocks)
		assert.Contains(t, got.Text, "Old Backlog (&gt;50d): 1")
	})

	t.Run("rejected payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid_blocks"))
		}))
		defer srv.Close()

		hook := NewWebhook(chatConfig(srv.URL, config.ChatFormatBlocks), zap.NewNop().Sugar())
		err := hook.Send(context.Background(), testBundle())
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.Contains(t, err.Error(), "invalid_blocks")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := chatConfig(srv.URL, config.ChatFormatBlocks)
		cfg.Timeout = 50 * time.Millisecond
		err := NewWebhook(cfg, zap.NewNop().Sugar()).Send(context.Background(), testBundle())
		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})
}

func TestTelegram_Send(t *testing.T) {
	t.Run("sends to every chat", func(t *testing.T) {
		var chats []int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/botsecret/sendMessage", r.URL.Path)
			var body struct {
				ChatID    int64  `json:"chat_id"`
				Text      string `json:"text"`
				ParseMode string `json:"parse_mode"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Empty(t, body.ParseMode)
			assert.Contains(t, body.Text, "Jira Daily Digest")
			chats = append(chats, body.ChatID)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		cfg := config.DefaultTelegramConfig()
		cfg.APIURL = srv.URL
		cfg.BotToken = "secret"
		cfg.ChatIDs = []int64{1, 2}

		require.NoError(t, NewTelegram(cfg, zap.NewNop().Sugar()).Send(context.Background(), testBundle()))
		assert.Equal(t, []int64{1, 2}, chats)
	})

	t.Run("one failing chat fails the channel", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
			}
		}))
		defer srv.Close()

		cfg := config.DefaultTelegramConfig()
		cfg.APIURL = srv.URL
		cfg.BotToken = "secret"
		cfg.ChatIDs = []int64{1, 2}

		err := NewTelegram(cfg, zap.NewNop().Sugar()).Send(context.Background(), testBundle())
		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.Contains(t, err.Error(), "bot was blocked")
		assert.Equal(t, 2, calls)
	})

	t.Run("transport errors hide the token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		cfg := config.DefaultTelegramConfig()
		cfg.APIURL = srv.URL
		cfg.BotToken = "very-secret-token"
		cfg.ChatIDs = []int64{1}

		err := NewTelegram(cfg, zap.NewNop().Sugar()).Send(context.Background(), testBundle())
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "very-secret-token")
	})
}
