// Package model provides the issue types shared by every issue source.
package model

import (
	"context"
	"time"
)

// Unassigned is the assignee label used when an issue has no assignee.
const Unassigned = "Unassigned"

// Issue is an immutable snapshot of a tracker issue taken at digest time.
type Issue struct {
	Key      string
	Summary  string
	Assignee *string
	Created  time.Time
	// DueDate is a calendar date at midnight in the report location.
	DueDate  *time.Time
	Status   string
	Priority *string
}

// AssigneeName returns the assignee or Unassigned.
func (i Issue) AssigneeName() string {
	if i.Assignee == nil || *i.Assignee == "" {
		return Unassigned
	}
	return *i.Assignee
}

// PriorityName returns the priority or an empty string.
func (i Issue) PriorityName() string {
	if i.Priority == nil {
		return ""
	}
	return *i.Priority
}

// Project is a tracker project as returned by project discovery.
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// QuerySpec selects issues of one project.
type QuerySpec struct {
	// Project is the project key. Required.
	Project string
	// Status restricts results to one exact status label. Empty means any status.
	Status string
	// CreatedBeforeDays keeps issues created at least that many days ago. Zero disables it.
	CreatedBeforeDays int
	// MaxResults caps the result size. Zero means the source default.
	MaxResults int
}

// Source is the issue query facade. Implementations are safe for concurrent use.
type Source interface {
	// Search returns the issues matching spec, in tracker order.
	Search(ctx context.Context, spec QuerySpec) ([]Issue, error)
	// ListProjects returns the projects visible to the configured account.
	ListProjects(ctx context.Context) ([]Project, error)
}
