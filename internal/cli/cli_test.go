package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/database"
	"github.com/festy23/jira_digest/internal/database/migrate"
	"github.com/festy23/jira_digest/internal/issue/model"
	"github.com/festy23/jira_digest/internal/issue/repository"
)

const migrationsDir = "../../migrations"

// testEnv points the configuration at a sqlite mirror in a temp dir and
// disables every delivery channel.
func testEnv(t *testing.T) config.DatabaseConfig {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "mirror.db")

	t.Setenv("DIGEST_CONFIG_FILE", "")
	t.Setenv("TRACKER_SOURCE", config.SourceDatabase)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("MIGRATIONS_PATH", migrationsDir)
	t.Setenv("REPORT_PROJECTS", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("MAIL_RECIPIENTS", "")
	t.Setenv("CHAT_WEBHOOK_URL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_IDS", "")

	cfg := config.DefaultDatabaseConfig()
	cfg.Driver = "sqlite"
	cfg.Path = dbPath
	cfg.MigrationsPath = migrationsDir
	return cfg
}

func seedMirror(t *testing.T, cfg config.DatabaseConfig) {
	t.Helper()
	ctx := t.Context()
	db, err := database.Open(ctx, cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer func() { _ = database.Close(db) }()
	require.NoError(t, migrate.Migrate(db, cfg.Driver, cfg.MigrationsPath))

	repo := repository.New(db, time.UTC, zap.NewNop().Sugar())
	require.NoError(t, repo.SaveProjects(ctx, []model.Project{{Key: "DEVOPS", Name: "DevOps"}}))

	alice := "Alice"
	now := time.Now().UTC()
	require.NoError(t, repo.SaveIssues(ctx, "DEVOPS", []model.Issue{
		{Key: "DEVOPS-1", Summary: "Rotate certificates", Status: "Blocked", Assignee: &alice, Created: now.AddDate(0, 0, -5)},
		{Key: "DEVOPS-2", Summary: "Old cleanup", Status: "Backlog", Created: now.AddDate(0, 0, -90)},
		{Key: "DEVOPS-3", Summary: "Upgrade cluster", Status: "In Progress", Created: now.AddDate(0, 0, -2)},
	}))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{newLogger: func(config.LoggerConfig) (*zap.SugaredLogger, error) {
		return zap.NewNop().Sugar(), nil
	}}
	code := execute(t.Context(), newRootCommand(a), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPreview_FromMirror(t *testing.T) {
	seedMirror(t, testEnv(t))

	t.Run("text", func(t *testing.T) {
		code, out, errOut := runCLI(t, "preview", "DEVOPS")
		require.Equal(t, ExitOK, code, errOut)
		assert.Contains(t, out, "JIRA DAILY DIGEST")
		assert.Contains(t, out, "DEVOPS")
		assert.Contains(t, out, "DEVOPS-1")
		assert.Contains(t, out, "Rotate certificates")
	})

	t.Run("json", func(t *testing.T) {
		code, out, errOut := runCLI(t, "preview", "--format", "json", "DEVOPS")
		require.Equal(t, ExitOK, code, errOut)

		var digest struct {
			Projects []struct {
				ProjectKey string `json:"project_key"`
				Blocked    struct {
					TotalBlocked int `json:"total_blocked"`
				} `json:"blocked"`
			} `json:"projects"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &digest))
		require.Len(t, digest.Projects, 1)
		assert.Equal(t, "DEVOPS", digest.Projects[0].ProjectKey)
		assert.Equal(t, 1, digest.Projects[0].Blocked.TotalBlocked)
	})

	t.Run("discovers projects", func(t *testing.T) {
		code, out, errOut := runCLI(t, "preview", "--format", "chat")
		require.Equal(t, ExitOK, code, errOut)
		assert.Contains(t, out, `"blocks"`)
		assert.Contains(t, out, "DEVOPS")
	})

	t.Run("unknown format", func(t *testing.T) {
		code, _, errOut := runCLI(t, "preview", "--format", "pdf")
		assert.Equal(t, ExitFailure, code)
		assert.Contains(t, errOut, "unknown format")
	})
}

func TestRun_NoChannelsFails(t *testing.T) {
	seedMirror(t, testEnv(t))

	code, out, errOut := runCLI(t, "run", "DEVOPS")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, "1 project(s) reported")
	assert.Contains(t, errOut, "no delivery channel configured")
}

func TestRun_DeliversThroughWebhook(t *testing.T) {
	seedMirror(t, testEnv(t))

	var payload map[string]any
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()
	t.Setenv("CHAT_WEBHOOK_URL", hook.URL)

	code, out, errOut := runCLI(t, "run", "DEVOPS")

	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "delivered")
	assert.NotEmpty(t, payload["blocks"])
}

func TestCheck(t *testing.T) {
	seedMirror(t, testEnv(t))

	code, out, errOut := runCLI(t, "check")

	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "Configuration: ok")
	assert.Contains(t, out, "Tracker (database): ok, 1 project(s) visible")
	assert.Contains(t, out, "DevOps")
	assert.Contains(t, out, "Delivery: no channel configured")
}

func TestCheck_EmptyMirror(t *testing.T) {
	testEnv(t)

	code, _, errOut := runCLI(t, "check")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "no projects to report")
}

func TestInvalidConfig(t *testing.T) {
	testEnv(t)
	t.Setenv("TRACKER_SOURCE", config.SourceJira)
	t.Setenv("JIRA_BASE_URL", "")

	code, _, errOut := runCLI(t, "run")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "invalid configuration")
}

func TestInterrupted(t *testing.T) {
	seedMirror(t, testEnv(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	a := &app{newLogger: func(config.LoggerConfig) (*zap.SugaredLogger, error) {
		return zap.NewNop().Sugar(), nil
	}}
	code := execute(ctx, newRootCommand(a), []string{"run", "DEVOPS"}, &stdout, &stderr)

	assert.Equal(t, ExitInterrupted, code)
}

func TestSync(t *testing.T) {
	dbCfg := testEnv(t)

	jira := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/project":
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"key": "DEVOPS", "name": "DevOps"},
				{"key": "EIT", "name": "Enterprise IT"},
			})
		case "/rest/api/2/search":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"startAt": 0,
				"total":   1,
				"issues": []map[string]any{{
					"key": "DEVOPS-7",
					"fields": map[string]any{
						"summary": "Patch kernels",
						"created": "2024-01-10T09:30:00.000+0000",
						"status":  map[string]any{"name": "Backlog"},
					},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer jira.Close()

	t.Setenv("JIRA_BASE_URL", jira.URL)
	t.Setenv("JIRA_EMAIL", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "secret")
	t.Setenv("JIRA_API_VERSION", "2")

	code, out, errOut := runCLI(t, "sync", "DEVOPS")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "DEVOPS: 1 issue(s)")

	db, err := database.Open(t.Context(), dbCfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer func() { _ = database.Close(db) }()
	repo := repository.New(db, time.UTC, zap.NewNop().Sugar())

	projects, err := repo.ListProjects(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []model.Project{{Key: "DEVOPS", Name: "DevOps"}}, projects)

	issues, err := repo.Search(t.Context(), model.QuerySpec{Project: "DEVOPS"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Patch kernels", issues[0].Summary)
}

func TestProjectKeys(t *testing.T) {
	assert.Nil(t, projectKeys(nil))
	assert.Equal(t, []string{"DEVOPS", "EIT", "OPS"}, projectKeys([]string{"DEVOPS, EIT", "OPS"}))
}

func TestSelectProjects(t *testing.T) {
	visible := []model.Project{{Key: "A", Name: "Alpha"}, {Key: "B", Name: "Beta"}}

	assert.Equal(t, visible, selectProjects(visible, nil, nil))
	assert.Equal(t, []model.Project{{Key: "B", Name: "Beta"}}, selectProjects(visible, nil, []string{"B"}))
	assert.Equal(t,
		[]model.Project{{Key: "X"}, {Key: "A", Name: "Alpha"}},
		selectProjects(visible, []string{"X", "A", "X"}, []string{"B"}),
	)
}

func TestSchedule_StopsOnSignal(t *testing.T) {
	seedMirror(t, testEnv(t))
	t.Setenv("SERVER_ENABLED", "true")
	t.Setenv("SERVER_PORT", "127.0.0.1:0")

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	a := &app{newLogger: func(config.LoggerConfig) (*zap.SugaredLogger, error) {
		return zap.NewNop().Sugar(), nil
	}}
	code := execute(ctx, newRootCommand(a), []string{"schedule"}, &stdout, &stderr)

	assert.Equal(t, ExitOK, code, stderr.String())
}

func TestSchedule_InvalidCron(t *testing.T) {
	seedMirror(t, testEnv(t))
	t.Setenv("SCHEDULE_CRON", "every morning")

	code, _, errOut := runCLI(t, "schedule")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, "invalid SCHEDULE_CRON")
}
