package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/festy23/jira_digest/internal/delivery"
	"github.com/festy23/jira_digest/internal/digest/handler"
	"github.com/festy23/jira_digest/internal/health"
	"github.com/festy23/jira_digest/internal/scheduler"
	"github.com/festy23/jira_digest/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newScheduleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [PROJECT_KEY...]",
		Short: "Run the digest on SCHEDULE_CRON until interrupted",
		Long: `Run the digest on SCHEDULE_CRON (evaluated in SCHEDULE_TIMEZONE) until
SIGINT or SIGTERM. With SERVER_ENABLED=true an HTTP server exposes GET /health
and GET /digest?format=text|html|chat|json&projects=KEY,KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := a.openSource(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = src.close() }()

			r := a.newRunner(src, delivery.FromConfig(a.cfg, a.logger))
			sched, err := scheduler.New(a.cfg.Schedule, r, projectKeys(args), a.logger)
			if err != nil {
				return err
			}

			var srv *server.Server
			serveErr := make(chan error, 1)
			if a.cfg.Server.Enabled {
				router := server.NewRouter(a.cfg.GinMode,
					health.New(src.name, src.check, a.logger),
					handler.New(r, a.logger),
					a.logger,
				)
				srv = server.New(a.cfg.Server, router, a.logger)
				go func() { serveErr <- srv.ListenAndServe() }()
			}

			sched.Start(ctx)
			defer sched.Stop()

			select {
			case <-ctx.Done():
				a.logger.Infow("shutdown signal received")
			case err = <-serveErr:
				a.logger.Errorw("HTTP server stopped", "error", err)
			}

			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
					err = errors.Join(err, shutdownErr)
				}
			}
			return err
		},
	}
}
