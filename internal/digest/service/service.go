// Package service builds digests from an issue source.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/digest/extract"
	"github.com/festy23/jira_digest/internal/digest/model"
	issuemodel "github.com/festy23/jira_digest/internal/issue/model"
)

// Service defines the digest aggregation operations.
type Service interface {
	// BuildDigest summarizes the given projects as of now. When keys is empty
	// the configured projects are used, then discovered ones.
	BuildDigest(ctx context.Context, keys []string, now time.Time) (*model.Digest, error)
}

type service struct {
	source   issuemodel.Source
	cfg      config.ReportConfig
	location *time.Location
	logger   *zap.SugaredLogger
}

// New creates a new digest service instance.
func New(source issuemodel.Source, cfg config.ReportConfig, loc *time.Location, logger *zap.SugaredLogger) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		source:   source,
		cfg:      cfg,
		location: loc,
		logger:   logger,
	}
}

// BuildDigest summarizes every project, skipping the ones that fail.
//
// The first project is summarized alone: a connectivity failure there means
// the tracker is unusable and aborts the run. The rest are summarized
// concurrently. When the run timeout expires, projects not finished by then
// are skipped and the partial digest is returned.
func (s *service) BuildDigest(ctx context.Context, keys []string, now time.Time) (*model.Digest, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	keys, err := s.resolveProjects(runCtx, keys)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("building digest", "projects", keys)

	results := make([]*model.ProjectDigest, len(keys))
	failures := make([]error, len(keys))

	if len(keys) > 0 {
		results[0], failures[0] = s.buildProject(runCtx, keys[0], now)
		if err := failures[0]; err != nil && errors.Is(err, issuemodel.ErrConnectivity) {
			s.logger.Errorw("tracker unreachable, aborting run", "project", keys[0], "error", err)
			return nil, err
		}
	}

	if rest := len(keys) - 1; rest > 0 {
		var g errgroup.Group
		g.SetLimit(min(rest, s.cfg.MaxParallelQueries))
		for i := 1; i < len(keys); i++ {
			g.Go(func() error {
				results[i], failures[i] = s.buildProject(runCtx, keys[i], now)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("digest interrupted: %w", err)
	}

	digest := &model.Digest{
		Date:        reportDate(now, s.location),
		GeneratedAt: now.In(s.location),
		Projects:    make([]model.ProjectDigest, 0, len(keys)),
	}
	for i, key := range keys {
		if failures[i] != nil {
			s.logger.Warnw("project skipped", "project", key, "error", failures[i])
			digest.Skipped = append(digest.Skipped, key)
			continue
		}
		digest.Projects = append(digest.Projects, *results[i])
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		s.logger.Warnw("run timeout reached, digest is partial",
			"timeout", s.cfg.RunTimeout,
			"completed", len(digest.Projects),
			"skipped", len(digest.Skipped),
		)
	}

	s.logger.Infow("digest built", "projects", len(digest.Projects), "skipped", len(digest.Skipped))
	return digest, nil
}

// resolveProjects picks the project keys for a run: explicit keys, then the
// configured ones, then the first DiscoveryLimit discovered projects.
func (s *service) resolveProjects(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		keys = s.cfg.Projects
	}
	if len(keys) > 0 {
		return dedupe(keys), nil
	}

	projects, err := s.source.ListProjects(ctx)
	if err != nil {
		s.logger.Errorw("project discovery failed", "error", err)
		return nil, fmt.Errorf("discover projects: %w", err)
	}

	discovered := make([]string, 0, min(len(projects), s.cfg.DiscoveryLimit))
	for _, p := range projects {
		if len(discovered) == s.cfg.DiscoveryLimit {
			break
		}
		discovered = append(discovered, p.Key)
	}
	s.logger.Infow("projects discovered", "available", len(projects), "using", discovered)
	return dedupe(discovered), nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// buildProject issues one query per summary and assembles the project digest.
func (s *service) buildProject(ctx context.Context, key string, now time.Time) (*model.ProjectDigest, error) {
	s.logger.Debugw("summarizing project", "project", key)

	search := func(status string, olderThan int) ([]issuemodel.Issue, error) {
		issues, err := s.source.Search(ctx, issuemodel.QuerySpec{
			Project:           key,
			Status:            status,
			CreatedBeforeDays: olderThan,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", model.ErrProjectFailed, key, err)
		}
		return issues, nil
	}

	all, err := search("", 0)
	if err != nil {
		return nil, err
	}
	blocked, err := search(s.cfg.BlockedStatus, 0)
	if err != nil {
		return nil, err
	}
	inProgress, err := search(s.cfg.InProgressStatus, 0)
	if err != nil {
		return nil, err
	}
	backlog, err := search(s.cfg.BacklogStatus, s.cfg.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	pd := &model.ProjectDigest{
		ProjectKey:    key,
		StatusSummary: extract.SummarizeStatus(all),
		Blocked:       extract.SummarizeBlocked(blocked),
		InProgress:    extract.SummarizeInProgress(inProgress, now),
		OldBacklog:    extract.SummarizeOldBacklog(backlog, now, s.cfg.AgeThresholdDays),
		Assignees:     extract.SummarizeAssignees(all),
	}

	s.logger.Infow("project summarized",
		"project", key,
		"issues", pd.StatusSummary.Total,
		"blocked", pd.Blocked.TotalBlocked,
		"in_progress", pd.InProgress.TotalInProgress,
		"old_backlog", pd.OldBacklog.Total,
	)
	return pd, nil
}

// reportDate returns midnight of now's calendar day in loc.
func reportDate(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
