package repository

import (
	"time"

	"github.com/festy23/jira_digest/internal/issue/model"
)

type projectRow struct {
	Key  string `gorm:"column:project_key;primaryKey"`
	Name string `gorm:"column:name"`
}

func (projectRow) TableName() string { return "projects" }

type issueRow struct {
	Key        string     `gorm:"column:issue_key;primaryKey"`
	ProjectKey string     `gorm:"column:project_key"`
	Summary    string     `gorm:"column:summary"`
	Assignee   *string    `gorm:"column:assignee"`
	Status     string     `gorm:"column:status"`
	Priority   *string    `gorm:"column:priority"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	DueDate    *time.Time `gorm:"column:due_date"`
}

func (issueRow) TableName() string { return "issues" }

func newIssueRow(projectKey string, issue model.Issue) issueRow {
	row := issueRow{
		Key:        issue.Key,
		ProjectKey: projectKey,
		Summary:    issue.Summary,
		Assignee:   issue.Assignee,
		Status:     issue.Status,
		Priority:   issue.Priority,
		CreatedAt:  issue.Created.UTC(),
	}
	if issue.DueDate != nil {
		due := time.Date(issue.DueDate.Year(), issue.DueDate.Month(), issue.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		row.DueDate = &due
	}
	return row
}

// toIssue returns the row as an issue. The due date keeps its calendar day
// and is moved to midnight in loc.
func (r issueRow) toIssue(loc *time.Location) model.Issue {
	issue := model.Issue{
		Key:      r.Key,
		Summary:  r.Summary,
		Assignee: r.Assignee,
		Created:  r.CreatedAt,
		Status:   r.Status,
		Priority: r.Priority,
	}
	if r.DueDate != nil {
		y, m, d := r.DueDate.Date()
		due := time.Date(y, m, d, 0, 0, 0, 0, loc)
		issue.DueDate = &due
	}
	return issue
}
