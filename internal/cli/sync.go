package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/database"
	"github.com/festy23/jira_digest/internal/issue/jira"
	"github.com/festy23/jira_digest/internal/issue/model"
)

func newSyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [PROJECT_KEY...]",
		Short: "Copy projects and their issues from Jira into the database mirror",
		Long: `Copy projects and their issues from Jira into the database mirror so later
runs can use TRACKER_SOURCE=database. Without arguments REPORT_PROJECTS is used,
or every visible project when that is empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := a.cfg.Tracker
			tracker.Source = config.SourceJira
			if err := tracker.Validate(); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
			}
			if err := a.cfg.Database.Validate(); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
			}

			ctx := cmd.Context()
			client := jira.NewClient(tracker, a.location(), a.logger)
			mirror, db, err := a.openMirror(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			visible, err := client.ListProjects(ctx)
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			projects := selectProjects(visible, projectKeys(args), a.cfg.Report.Projects)
			if err := mirror.SaveProjects(ctx, projects); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range projects {
				issues, err := client.Search(ctx, model.QuerySpec{Project: p.Key})
				if err != nil {
					return fmt.Errorf("fetch %s: %w", p.Key, err)
				}
				if err := mirror.SaveIssues(ctx, p.Key, issues); err != nil {
					return err
				}
				a.logger.Infow("project synced", "project", p.Key, "issues", len(issues))
				fmt.Fprintf(out, "%s: %d issue(s)\n", p.Key, len(issues))
			}
			return nil
		},
	}
}

// selectProjects keeps the requested keys in order, falling back to the
// configured keys and then to every visible project. Requested keys unknown to
// the tracker are kept without a name.
func selectProjects(visible []model.Project, requested, configured []string) []model.Project {
	keys := requested
	if len(keys) == 0 {
		keys = configured
	}
	if len(keys) == 0 {
		return visible
	}

	names := make(map[string]string, len(visible))
	for _, p := range visible {
		names[p.Key] = p.Name
	}
	seen := make(map[string]bool, len(keys))
	out := make([]model.Project, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, model.Project{Key: k, Name: names[k]})
	}
	return out
}
