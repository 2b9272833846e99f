package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/festy23/jira_digest/internal/delivery"
	digestmodel "github.com/festy23/jira_digest/internal/digest/model"
)

const (
	checkTimeout     = 30 * time.Second
	checkProjectList = 5
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration, tracker connectivity and delivery channels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration: ok")

			src, err := a.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = src.close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()
			projects, err := src.ListProjects(ctx)
			if err != nil {
				return fmt.Errorf("tracker check: %w", err)
			}
			fmt.Fprintf(out, "Tracker (%s): ok, %d project(s) visible\n", src.name, len(projects))
			for _, p := range projects[:min(len(projects), checkProjectList)] {
				fmt.Fprintf(out, "  %-10s %s\n", p.Key, p.Name)
			}

			channels := delivery.FromConfig(a.cfg, a.logger)
			if len(channels) == 0 {
				fmt.Fprintln(out, "Delivery: no channel configured")
			}
			for _, ch := range channels {
				fmt.Fprintf(out, "Delivery: %s configured\n", ch.Name())
			}

			if len(projects) == 0 {
				return digestmodel.ErrNoProjects
			}
			return nil
		},
	}
}
