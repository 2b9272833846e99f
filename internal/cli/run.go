package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/festy23/jira_digest/internal/delivery"
	"github.com/festy23/jira_digest/internal/digest/service"
	"github.com/festy23/jira_digest/internal/runner"
)

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [PROJECT_KEY...]",
		Short: "Build the digest and deliver it once",
		Long: `Build the digest for the given projects (or REPORT_PROJECTS, or the first
REPORT_DISCOVERY_LIMIT discovered projects) and deliver it through every
configured channel. Exits 0 when at least one channel delivered it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = src.close() }()

			r := a.newRunner(src, delivery.FromConfig(a.cfg, a.logger))
			res, err := r.Run(cmd.Context(), projectKeys(args))
			printResult(cmd.OutOrStdout(), res)
			if err != nil {
				return err
			}
			if !res.Succeeded() {
				return errNotDelivered
			}
			return nil
		},
	}
}

func (a *app) newRunner(src *issueSource, channels []delivery.Channel) *runner.Runner {
	svc := service.New(src, a.cfg.Report, a.location(), a.logger)
	return runner.New(svc, channels, a.cfg.Mail.SubjectPrefix, a.logger)
}

func printResult(w io.Writer, res *runner.Result) {
	if res == nil || res.Digest == nil {
		return
	}
	fmt.Fprintf(w, "Run %s: %d project(s) reported", res.RunID, len(res.Digest.Projects))
	if len(res.Digest.Skipped) > 0 {
		fmt.Fprintf(w, ", skipped: %s", strings.Join(res.Digest.Skipped, ", "))
	}
	fmt.Fprintln(w)
	for _, d := range res.Deliveries {
		if d.OK() {
			fmt.Fprintf(w, "  %-9s delivered\n", d.Channel)
		} else {
			fmt.Fprintf(w, "  %-9s failed: %v\n", d.Channel, d.Err)
		}
	}
}
