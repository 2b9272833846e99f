package jira

import (
	"fmt"
	"strings"
	"time"

	"github.com/festy23/jira_digest/internal/issue/model"
)

// searchFields are the only fields requested from the search endpoint.
const searchFields = "summary,assignee,created,duedate,status,priority"

type named struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type issueDTO struct {
	Key    string `json:"key"`
	Fields struct {
		Summary  string `json:"summary"`
		Assignee *named `json:"assignee"`
		Created  string `json:"created"`
		DueDate  string `json:"duedate"`
		Status   *named `json:"status"`
		Priority *named `json:"priority"`
	} `json:"fields"`
}

// searchResponse covers both the offset paged v2 search and the token paged v3 search.
type searchResponse struct {
	StartAt       int        `json:"startAt"`
	MaxResults    int        `json:"maxResults"`
	Total         int        `json:"total"`
	Issues        []issueDTO `json:"issues"`
	NextPageToken string     `json:"nextPageToken"`
	IsLast        bool       `json:"isLast"`
}

type projectDTO struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

var createdLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

func parseCreated(s string) (time.Time, error) {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised created timestamp %q", s)
}

// toIssue converts a search hit. Due dates are interpreted as midnight in loc.
func (d issueDTO) toIssue(loc *time.Location) (model.Issue, error) {
	created, err := parseCreated(d.Fields.Created)
	if err != nil {
		return model.Issue{}, fmt.Errorf("issue %s: %w", d.Key, err)
	}

	issue := model.Issue{
		Key:     d.Key,
		Summary: d.Fields.Summary,
		Created: created,
	}

	if a := d.Fields.Assignee; a != nil {
		name := a.DisplayName
		if name == "" {
			name = a.Name
		}
		if name != "" {
			issue.Assignee = &name
		}
	}
	if s := d.Fields.Status; s != nil {
		issue.Status = s.Name
	}
	if p := d.Fields.Priority; p != nil && p.Name != "" {
		name := p.Name
		issue.Priority = &name
	}
	if due := strings.TrimSpace(d.Fields.DueDate); due != "" {
		t, err := time.ParseInLocation(time.DateOnly, due, loc)
		if err != nil {
			return model.Issue{}, fmt.Errorf("issue %s: invalid due date %q: %w", d.Key, due, err)
		}
		issue.DueDate = &t
	}
	return issue, nil
}
