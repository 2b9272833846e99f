package render

import (
	"fmt"
	"strings"

	"github.com/festy23/jira_digest/internal/digest/model"
)

// Chat platform limits.
const (
	MaxBlocks      = 50
	MaxSectionText = 3000
	maxHeaderText  = 150
)

// Chat display limits.
const (
	chatMaxStatuses  = 5
	chatMaxBlocked   = 3
	chatMaxBacklog   = 2
	chatSummaryLen   = 50
	chatReservedTail = 1
)

// TextObject is a chat text element.
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block is one chat layout block.
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// Message is a chat webhook payload. Text is the notification fallback when
// Blocks is set and the whole message otherwise.
type Message struct {
	Text     string  `json:"text"`
	Blocks   []Block `json:"blocks,omitempty"`
	Channel  string  `json:"channel,omitempty"`
	Username string  `json:"username,omitempty"`
}

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeMrkdwn escapes the control characters of chat markup.
func EscapeMrkdwn(s string) string {
	return mrkdwnEscaper.Replace(s)
}

func headerBlock(text string) Block {
	return Block{Type: "header", Text: &TextObject{Type: "plain_text", Text: Truncate(text, maxHeaderText-len(Ellipsis))}}
}

func sectionBlock(text string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: Truncate(text, MaxSectionText-len(Ellipsis))}}
}

func dividerBlock() Block {
	return Block{Type: "divider"}
}

// Chat renders d as a block message. Projects that do not fit in MaxBlocks
// are left out and counted in the trailing context block.
func Chat(d model.Digest) Message {
	date := d.Date.Format(dateLayout)
	blocks := []Block{
		headerBlock("📊 Jira Daily Digest - " + date),
		dividerBlock(),
	}

	omitted := 0
	for i, p := range d.Projects {
		pb := chatProject(p)
		if len(blocks)+len(pb)+chatReservedTail > MaxBlocks {
			omitted = len(d.Projects) - i
			break
		}
		blocks = append(blocks, pb...)
	}

	elements := []TextObject{{
		Type: "mrkdwn",
		Text: "Report generated at " + d.GeneratedAt.Format(timestampLayout),
	}}
	if omitted > 0 {
		elements = append(elements, TextObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("%d more project(s) omitted", omitted),
		})
	}
	if len(d.Skipped) > 0 {
		elements = append(elements, TextObject{
			Type: "mrkdwn",
			Text: "Skipped projects: " + EscapeMrkdwn(strings.Join(d.Skipped, ", ")),
		})
	}
	blocks = append(blocks, Block{Type: "context", Elements: elements})

	return Message{
		Text:   "Jira Daily Digest - " + date,
		Blocks: blocks,
	}
}

func chatProject(p model.ProjectDigest) []Block {
	blocks := []Block{sectionBlock(fmt.Sprintf("*📁 Project: %s*", EscapeMrkdwn(p.ProjectKey)))}

	var b strings.Builder
	fmt.Fprintf(&b, "*Status Summary* (Total: %d issues)\n", p.StatusSummary.Total)
	for _, sc := range firstN(p.StatusSummary.ByStatus, chatMaxStatuses) {
		fmt.Fprintf(&b, "• %s: %d (%s)\n", EscapeMrkdwn(sc.Status), sc.Count, percent(sc.Percentage))
	}
	blocks = append(blocks, sectionBlock(b.String()))

	if p.Blocked.TotalBlocked > 0 {
		b.Reset()
		fmt.Fprintf(&b, "*🚫 Blocked Issues:* %d\n", p.Blocked.TotalBlocked)
		for _, issue := range firstN(p.Blocked.Issues, chatMaxBlocked) {
			fmt.Fprintf(&b, "• `%s` - %s\n", EscapeMrkdwn(issue.Key), EscapeMrkdwn(Truncate(issue.Summary, chatSummaryLen)))
		}
		blocks = append(blocks, sectionBlock(b.String()))
	}

	if p.InProgress.HasAlerts() {
		b.Reset()
		fmt.Fprintf(&b, "*🔄 In Progress Issues:* %d\n", p.InProgress.TotalInProgress)
		if n := len(p.InProgress.WithoutDates); n > 0 {
			fmt.Fprintf(&b, "⚠️ %d without dates\n", n)
		}
		if n := len(p.InProgress.BehindSchedule); n > 0 {
			fmt.Fprintf(&b, "⚠️ %d behind schedule\n", n)
		}
		blocks = append(blocks, sectionBlock(b.String()))
	}

	if p.OldBacklog.Total > 0 {
		b.Reset()
		fmt.Fprintf(&b, "*⏰ Old Backlog* (>%d days): %d issues\n", p.OldBacklog.AgeThresholdDays, p.OldBacklog.Total)
		for _, issue := range firstN(p.OldBacklog.Issues, chatMaxBacklog) {
			fmt.Fprintf(&b, "• `%s` - %d days old\n", EscapeMrkdwn(issue.Key), issue.AgeDays)
		}
		blocks = append(blocks, sectionBlock(b.String()))
	}

	return append(blocks, dividerBlock())
}

// PlainText renders d as a single chat message for channels that do not
// accept blocks.
func PlainText(d model.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Jira Daily Digest - %s*\n", d.Date.Format(dateLayout))

	for _, p := range d.Projects {
		fmt.Fprintf(&b, "\n*Project: %s*\n", p.ProjectKey)
		fmt.Fprintf(&b, "📈 Total Issues: %d\n", p.StatusSummary.Total)
		if p.Blocked.TotalBlocked > 0 {
			fmt.Fprintf(&b, "🚫 Blocked: %d\n", p.Blocked.TotalBlocked)
		}
		if p.InProgress.TotalInProgress > 0 {
			fmt.Fprintf(&b, "🔄 In Progress: %d\n", p.InProgress.TotalInProgress)
			if n := len(p.InProgress.WithoutDates); n > 0 {
				fmt.Fprintf(&b, "  ⚠️ %d without dates\n", n)
			}
			if n := len(p.InProgress.BehindSchedule); n > 0 {
				fmt.Fprintf(&b, "  ⚠️ %d behind schedule\n", n)
			}
		}
		if p.OldBacklog.Total > 0 {
			fmt.Fprintf(&b, "⏰ Old Backlog (>%dd): %d\n", p.OldBacklog.AgeThresholdDays, p.OldBacklog.Total)
		}
	}

	if len(d.Skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Skipped projects: %s\n", strings.Join(d.Skipped, ", "))
	}
	fmt.Fprintf(&b, "\n_Generated at %s_", d.GeneratedAt.Format(timestampLayout))
	return b.String()
}
