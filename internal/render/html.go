package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/festy23/jira_digest/internal/digest/model"
)

var htmlTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"date":      func(d model.Digest) string { return d.Date.Format(dateLayout) },
	"generated": func(d model.Digest) string { return d.GeneratedAt.Format(timestampLayout) },
	"percent":   percent,
	"blocked":   func(issues []model.IssueRef) []model.IssueRef { return firstN(issues, maxBlocked) },
	"backlog":   func(issues []model.BacklogIssue) []model.BacklogIssue { return firstN(issues, maxBacklog) },
	"assignees": func(rows []model.AssigneeCount) []model.AssigneeCount { return firstN(rows, maxAssignees) },
}).Parse(htmlLayout))

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Jira Daily Digest - {{date .}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #0052CC; border-bottom: 3px solid #0052CC; }
h2 { color: #172B4D; margin-top: 30px; }
h3 { color: #5E6C84; }
.status-item { margin: 10px 0; padding: 10px; background: #F4F5F7; border-radius: 3px; }
.issue-item { margin: 5px 0; padding: 8px; background: #FAFBFC; border-left: 3px solid #0052CC; }
.warning { border-left-color: #FF5630; }
.blocked { border-left-color: #FF5630; background: #FFEBE6; }
</style>
</head>
<body>
<h1>📊 JIRA Daily Digest - {{date .}}</h1>
{{- if not .Projects}}
<p>No project data available.</p>
{{- end}}
{{- range .Projects}}
<section class="project">
<h2>Project: {{.ProjectKey}}</h2>
<h3>📈 Status Summary (Total: {{.StatusSummary.Total}} issues)</h3>
<div>
{{- range .StatusSummary.ByStatus}}
<div class="status-item"><strong>{{.Status}}:</strong> {{.Count}} issues ({{percent .Percentage}})</div>
{{- end}}
</div>
{{- if gt .Blocked.TotalBlocked 0}}
<h3>🚫 Blocked Issues: {{.Blocked.TotalBlocked}}</h3>
{{- range blocked .Blocked.Issues}}
<div class="issue-item blocked"><strong>{{.Key}}:</strong> {{.Summary}}<br><small>Assignee: {{.Assignee}}</small></div>
{{- end}}
{{- end}}
<h3>🔄 In Progress: {{.InProgress.TotalInProgress}}</h3>
{{- with .InProgress.WithoutDates}}
<div class="issue-item warning">⚠️ {{len .}} issues without dates</div>
{{- end}}
{{- with .InProgress.BehindSchedule}}
<div class="issue-item warning">⚠️ {{len .}} issues behind schedule</div>
{{- end}}
{{- if gt .OldBacklog.Total 0}}
<h3>⏰ Old Backlog (&gt;{{.OldBacklog.AgeThresholdDays}} days): {{.OldBacklog.Total}}</h3>
{{- range backlog .OldBacklog.Issues}}
<div class="issue-item"><strong>{{.Key}}:</strong> {{.AgeDays}} days old<br>{{.Summary}}</div>
{{- end}}
{{- end}}
{{- with .Assignees.ByAssignee}}
<h3>👥 Top Assignees</h3>
{{- range assignees .}}
<div class="status-item"><strong>{{.Assignee}}:</strong> {{.Count}} issues ({{percent .Percentage}})</div>
{{- end}}
{{- end}}
</section>
{{- end}}
{{- with .Skipped}}
<p class="issue-item warning">⚠️ Skipped projects:{{range .}} {{.}}{{end}}</p>
{{- end}}
<p><small>Report generated at: {{generated .}}</small></p>
</body>
</html>
`

// HTML renders d as a self-contained HTML document. Issue text is escaped.
func HTML(d model.Digest) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
