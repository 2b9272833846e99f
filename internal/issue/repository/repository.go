// Package repository provides the database mirror of the issue tracker.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/festy23/jira_digest/internal/issue/model"
)

// Repository is an issue source backed by the mirror tables. It also accepts
// writes so that the mirror can be refreshed from the live tracker.
type Repository interface {
	model.Source

	// SaveProjects inserts or updates projects by key.
	SaveProjects(ctx context.Context, projects []model.Project) error

	// SaveIssues replaces the mirrored issues of one project with issues.
	SaveIssues(ctx context.Context, projectKey string, issues []model.Issue) error
}

type repository struct {
	db       *gorm.DB
	location *time.Location
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New creates a new mirror repository instance. Due dates are returned as
// midnight in loc.
func New(db *gorm.DB, loc *time.Location, logger *zap.SugaredLogger) Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &repository{
		db:       db,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// classify marks database failures as connectivity failures. A mirror that
// cannot answer one query cannot answer the rest either.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("mirror query: %w", ctxErr)
	}
	return fmt.Errorf("%w: %w", model.ErrConnectivity, err)
}

// Search returns the mirrored issues matching spec, newest first.
func (r *repository) Search(ctx context.Context, spec model.QuerySpec) ([]model.Issue, error) {
	if spec.Project == "" {
		return nil, model.ErrInvalidQuery
	}
	r.logger.Debugw("Search called", "project", spec.Project, "status", spec.Status)

	query := r.db.WithContext(ctx).
		Model(&issueRow{}).
		Where("project_key = ?", spec.Project)
	if spec.Status != "" {
		query = query.Where("status = ?", spec.Status)
	}
	if spec.CreatedBeforeDays > 0 {
		cutoff := r.now().UTC().AddDate(0, 0, -spec.CreatedBeforeDays)
		query = query.Where("created_at <= ?", cutoff)
	}
	if spec.MaxResults > 0 {
		query = query.Limit(spec.MaxResults)
	}

	var rows []issueRow
	if err := query.Order("created_at DESC").Order("issue_key ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("Search database error", "project", spec.Project, "error", err)
		return nil, classify(ctx, err)
	}

	issues := make([]model.Issue, 0, len(rows))
	for _, row := range rows {
		issues = append(issues, row.toIssue(r.location))
	}

	r.logger.Debugw("Search completed", "project", spec.Project, "count", len(issues))
	return issues, nil
}

// ListProjects returns the mirrored projects ordered by key.
func (r *repository) ListProjects(ctx context.Context) ([]model.Project, error) {
	r.logger.Debugw("ListProjects called")

	var rows []projectRow
	if err := r.db.WithContext(ctx).Order("project_key ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("ListProjects database error", "error", err)
		return nil, classify(ctx, err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, model.Project{Key: row.Key, Name: row.Name})
	}
	return projects, nil
}

// SaveProjects inserts or updates projects by key.
func (r *repository) SaveProjects(ctx context.Context, projects []model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	rows := make([]projectRow, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, projectRow{Key: p.Key, Name: p.Name})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).
		Create(&rows).Error
	if err != nil {
		r.logger.Errorw("SaveProjects database error", "count", len(rows), "error", err)
		return err
	}

	r.logger.Debugw("SaveProjects completed", "count", len(rows))
	return nil
}

// SaveIssues replaces the issue set of one project: rows of projectKey that
// are not in issues are deleted, the rest are inserted or updated by key.
func (r *repository) SaveIssues(ctx context.Context, projectKey string, issues []model.Issue) error {
	rows := make([]issueRow, 0, len(issues))
	keys := make([]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, newIssueRow(projectKey, issue))
		keys = append(keys, issue.Key)
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("project_key = ?", projectKey)
		if len(keys) > 0 {
			stale = stale.Where("issue_key NOT IN ?", keys)
		}
		res := stale.Delete(&issueRow{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "issue_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"project_key", "summary", "assignee", "status", "priority", "created_at", "due_date",
			}),
		}).CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		r.logger.Errorw("SaveIssues database error", "project", projectKey, "count", len(rows), "error", err)
		return err
	}

	r.logger.Debugw("SaveIssues completed", "project", projectKey, "count", len(rows), "removed", removed)
	return nil
}
