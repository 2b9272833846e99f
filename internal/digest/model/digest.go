// Package model provides the typed digest produced by a run and consumed by
// every renderer.
package model

import "time"

// IssueRef is the part of an issue a report row needs.
type IssueRef struct {
	Key      string    `json:"key"`
	Summary  string    `json:"summary"`
	Assignee string    `json:"assignee"`
	Created  time.Time `json:"created"`
	Priority string    `json:"priority,omitempty"`
	// DueDate is nil when the issue has no due date.
	DueDate *time.Time `json:"due_date,omitempty"`
}

// StatusCount is one row of the status histogram.
type StatusCount struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusSummary is the status histogram of a project. ByStatus keeps the
// order in which statuses were first seen.
type StatusSummary struct {
	Total    int           `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
}

// Lookup returns the row for status.
func (s StatusSummary) Lookup(status string) (StatusCount, bool) {
	for _, sc := range s.ByStatus {
		if sc.Status == status {
			return sc, true
		}
	}
	return StatusCount{}, false
}

// BlockedReport lists blocked issues in tracker order.
type BlockedReport struct {
	TotalBlocked int        `json:"total_blocked"`
	Issues       []IssueRef `json:"issues"`
}

// InProgressReport lists in-progress issues and flags the ones that need attention.
type InProgressReport struct {
	TotalInProgress int        `json:"total_in_progress"`
	Issues          []IssueRef `json:"issues"`
	// WithoutDates holds issues with no due date.
	WithoutDates []IssueRef `json:"without_dates"`
	// BehindSchedule holds issues whose due date is in the past.
	BehindSchedule []IssueRef `json:"behind_schedule"`
}

// HasAlerts reports whether any in-progress issue needs attention.
func (r InProgressReport) HasAlerts() bool {
	return len(r.WithoutDates) > 0 || len(r.BehindSchedule) > 0
}

// BacklogIssue is a backlog entry together with its age.
type BacklogIssue struct {
	Key      string    `json:"key"`
	Summary  string    `json:"summary"`
	Assignee string    `json:"assignee"`
	Created  time.Time `json:"created"`
	AgeDays  int       `json:"age_days"`
}

// OldBacklogReport lists backlog issues older than the threshold, oldest first.
type OldBacklogReport struct {
	Total            int            `json:"total"`
	AgeThresholdDays int            `json:"age_threshold_days"`
	Issues           []BacklogIssue `json:"issues"`
}

// AssigneeCount is one row of the assignee histogram.
type AssigneeCount struct {
	Assignee   string  `json:"assignee"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AssigneeDistribution is ordered by count, most common first.
type AssigneeDistribution struct {
	Total      int             `json:"total"`
	ByAssignee []AssigneeCount `json:"by_assignee"`
}

// ProjectDigest holds every summary of one project.
type ProjectDigest struct {
	ProjectKey    string               `json:"project_key"`
	StatusSummary StatusSummary        `json:"status_summary"`
	Blocked       BlockedReport        `json:"blocked"`
	InProgress    InProgressReport     `json:"in_progress"`
	OldBacklog    OldBacklogReport     `json:"old_backlog"`
	Assignees     AssigneeDistribution `json:"assignees"`
}

// Digest is the result of one run. It is not modified after it is built.
type Digest struct {
	// Date is the report day, midnight in the report location.
	Date        time.Time       `json:"date"`
	GeneratedAt time.Time       `json:"generated_at"`
	Projects    []ProjectDigest `json:"projects"`
	// Skipped lists the projects that failed and were left out.
	Skipped []string `json:"skipped,omitempty"`
}

// Empty reports whether the digest has no project.
func (d Digest) Empty() bool {
	return len(d.Projects) == 0
}
