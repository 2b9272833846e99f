package render

import (
	"fmt"
	"strings"

	"github.com/festy23/jira_digest/internal/digest/model"
)

const textWidth = 80

// Text renders d as a line oriented plain text report.
func Text(d model.Digest) string {
	var b strings.Builder
	rule := strings.Repeat("=", textWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "JIRA DAILY DIGEST - %s\n", d.Date.Format(dateLayout))
	fmt.Fprintln(&b, rule)

	if d.Empty() {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "No project data available.")
	}

	for _, p := range d.Projects {
		writeTextProject(&b, p)
	}

	if len(d.Skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠️  Skipped projects: %s\n", strings.Join(d.Skipped, ", "))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Report generated at: %s\n", d.GeneratedAt.Format(timestampLayout))
	b.WriteString(rule)
	return b.String()
}

func writeTextProject(b *strings.Builder, p model.ProjectDigest) {
	fmt.Fprintf(b, "\n📊 PROJECT: %s\n", p.ProjectKey)
	fmt.Fprintln(b, strings.Repeat("-", textWidth))

	fmt.Fprintf(b, "\n📈 STATUS SUMMARY (Total: %d issues)\n", p.StatusSummary.Total)
	for _, sc := range p.StatusSummary.ByStatus {
		fmt.Fprintf(b, "  • %s: %d (%s)\n", sc.Status, sc.Count, percent(sc.Percentage))
	}

	if p.Blocked.TotalBlocked > 0 {
		fmt.Fprintf(b, "\n🚫 BLOCKED ISSUES: %d\n", p.Blocked.TotalBlocked)
		for _, issue := range firstN(p.Blocked.Issues, maxBlocked) {
			fmt.Fprintf(b, "  • %s: %s (Assignee: %s)\n",
				issue.Key, Truncate(issue.Summary, blockedSummaryLen), issue.Assignee)
		}
	}

	fmt.Fprintf(b, "\n🔄 IN PROGRESS: %d\n", p.InProgress.TotalInProgress)
	if n := len(p.InProgress.WithoutDates); n > 0 {
		fmt.Fprintf(b, "  ⚠️  %d issues without dates\n", n)
	}
	if n := len(p.InProgress.BehindSchedule); n > 0 {
		fmt.Fprintf(b, "  ⚠️  %d issues behind schedule\n", n)
	}

	if p.OldBacklog.Total > 0 {
		fmt.Fprintf(b, "\n⏰ OLD BACKLOG (>%d days): %d\n", p.OldBacklog.AgeThresholdDays, p.OldBacklog.Total)
		for _, issue := range firstN(p.OldBacklog.Issues, maxBacklog) {
			fmt.Fprintf(b, "  • %s: %d days old - %s\n",
				issue.Key, issue.AgeDays, Truncate(issue.Summary, backlogSummaryLen))
		}
	}

	if len(p.Assignees.ByAssignee) > 0 {
		fmt.Fprintln(b, "\n👥 TOP ASSIGNEES")
		for _, ac := range firstN(p.Assignees.ByAssignee, maxAssignees) {
			fmt.Fprintf(b, "  • %s: %d (%s)\n", ac.Assignee, ac.Count, percent(ac.Percentage))
		}
	}
}
