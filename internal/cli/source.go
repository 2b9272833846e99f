package cli

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/database"
	"github.com/festy23/jira_digest/internal/database/migrate"
	"github.com/festy23/jira_digest/internal/health"
	"github.com/festy23/jira_digest/internal/issue/jira"
	"github.com/festy23/jira_digest/internal/issue/model"
	"github.com/festy23/jira_digest/internal/issue/repository"
)

// issueSource is the configured issue source with its health check and cleanup.
type issueSource struct {
	model.Source
	name  string
	check health.CheckFunc
	close func() error
}

func (a *app) location() *time.Location {
	loc, err := a.cfg.Report.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

// openSource returns the Jira client or the database mirror, per TRACKER_SOURCE.
func (a *app) openSource(ctx context.Context) (*issueSource, error) {
	if a.cfg.Tracker.Source != config.SourceDatabase {
		client := jira.NewClient(a.cfg.Tracker, a.location(), a.logger)
		return &issueSource{
			Source: client,
			name:   config.SourceJira,
			check:  health.Source(client),
			close:  func() error { return nil },
		}, nil
	}

	repo, db, err := a.openMirror(ctx)
	if err != nil {
		return nil, err
	}
	return &issueSource{
		Source: repo,
		name:   config.SourceDatabase,
		check:  health.Database(db),
		close:  func() error { return database.Close(db) },
	}, nil
}

// openMirror connects to the mirror database and applies pending migrations.
func (a *app) openMirror(ctx context.Context) (repository.Repository, *gorm.DB, error) {
	db, err := database.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrConnectivity, err)
	}
	if err := migrate.Migrate(db, a.cfg.Database.Driver, a.cfg.Database.MigrationsPath); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	a.logger.Infow("issue mirror ready", "driver", a.cfg.Database.Driver)
	return repository.New(db, a.location(), a.logger), db, nil
}
