// Package extract turns issue slices into digest summaries. Every function is
// pure: it never fails and an empty input yields a zero summary.
package extract

import (
	"slices"
	"time"

	"github.com/festy23/jira_digest/internal/digest/model"
	issuemodel "github.com/festy23/jira_digest/internal/issue/model"
)

const day = 24 * time.Hour

func ref(issue issuemodel.Issue) model.IssueRef {
	return model.IssueRef{
		Key:      issue.Key,
		Summary:  issue.Summary,
		Assignee: issue.AssigneeName(),
		Created:  issue.Created,
		Priority: issue.PriorityName(),
		DueDate:  issue.DueDate,
	}
}

// SummarizeStatus groups issues by exact status label.
func SummarizeStatus(issues []issuemodel.Issue) model.StatusSummary {
	summary := model.StatusSummary{
		Total:    len(issues),
		ByStatus: []model.StatusCount{},
	}

	index := make(map[string]int)
	for _, issue := range issues {
		i, ok := index[issue.Status]
		if !ok {
			i = len(summary.ByStatus)
			index[issue.Status] = i
			summary.ByStatus = append(summary.ByStatus, model.StatusCount{Status: issue.Status})
		}
		summary.ByStatus[i].Count++
	}

	if summary.Total > 0 {
		for i := range summary.ByStatus {
			summary.ByStatus[i].Percentage = 100 * float64(summary.ByStatus[i].Count) / float64(summary.Total)
		}
	}
	return summary
}

// SummarizeBlocked lists issues already filtered to the blocked status.
func SummarizeBlocked(issues []issuemodel.Issue) model.BlockedReport {
	report := model.BlockedReport{
		TotalBlocked: len(issues),
		Issues:       make([]model.IssueRef, 0, len(issues)),
	}
	for _, issue := range issues {
		report.Issues = append(report.Issues, ref(issue))
	}
	return report
}

// SummarizeInProgress flags issues without a due date and issues whose due
// date is before now. Issues due now or later are only counted.
func SummarizeInProgress(issues []issuemodel.Issue, now time.Time) model.InProgressReport {
	report := model.InProgressReport{
		TotalInProgress: len(issues),
		Issues:          make([]model.IssueRef, 0, len(issues)),
		WithoutDates:    []model.IssueRef{},
		BehindSchedule:  []model.IssueRef{},
	}
	for _, issue := range issues {
		r := ref(issue)
		report.Issues = append(report.Issues, r)

		switch {
		case issue.DueDate == nil:
			report.WithoutDates = append(report.WithoutDates, r)
		case issue.DueDate.Before(now):
			report.BehindSchedule = append(report.BehindSchedule, r)
		}
	}
	return report
}

// AgeDays returns the number of whole days between created and now, never negative.
func AgeDays(created, now time.Time) int {
	d := now.Sub(created)
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// SummarizeOldBacklog computes the age of backlog issues that are already
// known to be older than thresholdDays and orders them oldest first.
// Equal ages keep their input order.
func SummarizeOldBacklog(issues []issuemodel.Issue, now time.Time, thresholdDays int) model.OldBacklogReport {
	report := model.OldBacklogReport{
		Total:            len(issues),
		AgeThresholdDays: thresholdDays,
		Issues:           make([]model.BacklogIssue, 0, len(issues)),
	}
	for _, issue := range issues {
		report.Issues = append(report.Issues, model.BacklogIssue{
			Key:      issue.Key,
			Summary:  issue.Summary,
			Assignee: issue.AssigneeName(),
			Created:  issue.Created,
			AgeDays:  AgeDays(issue.Created, now),
		})
	}

	slices.SortStableFunc(report.Issues, func(a, b model.BacklogIssue) int {
		return b.AgeDays - a.AgeDays
	})
	return report
}

// SummarizeAssignees counts issues per assignee, most common first, with the
// same percentages as SummarizeStatus.
// Equal counts keep the order in which assignees were first seen.
func SummarizeAssignees(issues []issuemodel.Issue) model.AssigneeDistribution {
	dist := model.AssigneeDistribution{
		Total:      len(issues),
		ByAssignee: []model.AssigneeCount{},
	}

	index := make(map[string]int)
	for _, issue := range issues {
		name := issue.AssigneeName()
		i, ok := index[name]
		if !ok {
			i = len(dist.ByAssignee)
			index[name] = i
			dist.ByAssignee = append(dist.ByAssignee, model.AssigneeCount{Assignee: name})
		}
		dist.ByAssignee[i].Count++
	}

	if dist.Total > 0 {
		for i := range dist.ByAssignee {
			dist.ByAssignee[i].Percentage = 100 * float64(dist.ByAssignee[i].Count) / float64(dist.Total)
		}
	}

	slices.SortStableFunc(dist.ByAssignee, func(a, b model.AssigneeCount) int {
		return b.Count - a.Count
	})
	return dist
}
