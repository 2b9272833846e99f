// Package cli contains the jira-digest commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	pkglogger "github.com/festy23/jira_digest/pkg/logger"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// Version is set at build time.
var Version = "dev"

// errNotDelivered is returned by run when no channel accepted the digest.
var errNotDelivered = errors.New("digest was not delivered by any channel")

// app holds what every command shares once the configuration is loaded.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.SugaredLogger
	newLogger  func(config.LoggerConfig) (*zap.SugaredLogger, error)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{newLogger: pkglogger.NewWithConfig})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jira-digest",
		Short: "Daily Jira project digest",
		Long: `jira-digest summarizes Jira projects (status breakdown, blocked work,
in-progress alerts, stale backlog, assignee load) and delivers the result by
mail, chat webhook and Telegram.

Configuration comes from an optional YAML file overridden by environment
variables (JIRA_BASE_URL, JIRA_EMAIL, JIRA_API_TOKEN, REPORT_PROJECTS, ...).

Examples:
  jira-digest run                    # configured or discovered projects
  jira-digest run DEVOPS,EIT         # explicit projects
  jira-digest preview --format html  # render without sending
  jira-digest check                  # verify configuration and connectivity
  jira-digest schedule               # run on SCHEDULE_CRON`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Path to a YAML config file (default: $DIGEST_CONFIG_FILE or ./"+config.DefaultFileName+")")

	root.AddCommand(
		newRunCommand(a),
		newPreviewCommand(a),
		newCheckCommand(a),
		newSyncCommand(a),
		newScheduleCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	// Keep stdout clean for rendered previews.
	if cmd.Name() == "preview" {
		cfg.Logger.Output = "stderr"
	}

	logger, err := a.newLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("%w: building logger: %w", config.ErrInvalidConfig, err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// Execute runs the command line and maps the outcome to an exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRootCommand(), args, stdout, stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "interrupted")
		return ExitInterrupted
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitFailure
}

// projectKeys accepts keys as separate arguments, comma separated, or both.
func projectKeys(args []string) []string {
	var keys []string
	for _, arg := range args {
		keys = append(keys, config.SplitList(arg)...)
	}
	return keys
}
