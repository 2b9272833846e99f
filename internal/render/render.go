// Package render projects a digest into text, HTML and chat representations.
// Renderers are deterministic: they read no clock and the same digest always
// yields the same output.
package render

import (
	"fmt"
	"time"

	"github.com/festy23/jira_digest/internal/digest/model"
)

// Ellipsis marks a truncated string.
const Ellipsis = "..."

// Display limits shared by the text and HTML reports.
const (
	maxBlocked        = 5
	blockedSummaryLen = 60
	maxBacklog        = 3
	backlogSummaryLen = 50
	maxAssignees      = 5
)

const (
	dateLayout      = time.DateOnly
	timestampLayout = time.RFC3339
)

// Truncate keeps the first n characters of s and appends Ellipsis when s is
// longer than n. Shorter strings are returned unchanged.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + Ellipsis
}

// Bundle is every rendering of one digest, produced once per run.
type Bundle struct {
	Subject   string
	Text      string
	HTML      string
	Chat      Message
	PlainText string
}

// Render produces all formats of d. subjectPrefix starts the mail subject.
func Render(d model.Digest, subjectPrefix string) (Bundle, error) {
	html, err := HTML(d)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Subject:   Subject(d, subjectPrefix),
		Text:      Text(d),
		HTML:      html,
		Chat:      Chat(d),
		PlainText: PlainText(d),
	}, nil
}

// Subject returns the mail subject for d.
func Subject(d model.Digest, prefix string) string {
	return fmt.Sprintf("%s - %s", prefix, d.Date.Format(dateLayout))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
