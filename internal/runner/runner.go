// Package runner drives one digest run: generate, render once, deliver.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/delivery"
	"github.com/festy23/jira_digest/internal/digest/model"
	"github.com/festy23/jira_digest/internal/digest/service"
	"github.com/festy23/jira_digest/internal/render"
)

// Result is the outcome of one run.
type Result struct {
	RunID      string
	Digest     *model.Digest
	Bundle     render.Bundle
	Deliveries []delivery.Result
}

// Succeeded reports whether at least one channel delivered the digest.
func (r *Result) Succeeded() bool {
	return r != nil && delivery.AnySucceeded(r.Deliveries)
}

// Runner wires digest generation to delivery.
type Runner struct {
	digests       service.Service
	channels      []delivery.Channel
	subjectPrefix string
	logger        *zap.SugaredLogger
	now           func() time.Time
}

// New creates a runner. channels may be empty, in which case runs never succeed.
func New(digests service.Service, channels []delivery.Channel, subjectPrefix string, logger *zap.SugaredLogger) *Runner {
	return &Runner{
		digests:       digests,
		channels:      channels,
		subjectPrefix: subjectPrefix,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate builds and renders a digest without delivering it.
func (r *Runner) Generate(ctx context.Context, keys []string) (*model.Digest, render.Bundle, error) {
	return r.generate(ctx, r.logger, keys)
}

func (r *Runner) generate(ctx context.Context, logger *zap.SugaredLogger, keys []string) (*model.Digest, render.Bundle, error) {
	logger.Infow("stage started", "stage", "generate", "projects", keys)
	digest, err := r.digests.BuildDigest(ctx, keys, r.now())
	if err != nil {
		logger.Errorw("digest generation failed", "stage", "generate", "error", err)
		return nil, render.Bundle{}, fmt.Errorf("generate digest: %w", err)
	}

	logger.Infow("stage started", "stage", "render", "projects", len(digest.Projects))
	bundle, err := render.Render(*digest, r.subjectPrefix)
	if err != nil {
		logger.Errorw("rendering failed", "stage", "render", "error", err)
		return nil, render.Bundle{}, err
	}
	return digest, bundle, nil
}

// Run performs one complete run. The returned error covers generation
// failures, interruption and the absence of channels; delivery failures are
// reported through Result.Deliveries.
func (r *Runner) Run(ctx context.Context, keys []string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", res.RunID)
	start := time.Now()

	names := make([]string, 0, len(r.channels))
	for _, ch := range r.channels {
		names = append(names, ch.Name())
	}
	logger.Infow("stage started", "stage", "setup", "channels", names)

	digest, bundle, err := r.generate(ctx, logger, keys)
	if err != nil {
		return res, err
	}
	res.Digest = digest
	res.Bundle = bundle

	if err := ctx.Err(); err != nil {
		logger.Warnw("run interrupted before delivery", "error", err)
		return res, fmt.Errorf("run interrupted: %w", err)
	}

	if len(r.channels) == 0 {
		logger.Warnw("no delivery attempted", "stage", "deliver")
		r.summary(logger, res, start)
		return res, delivery.ErrNoChannels
	}

	logger.Infow("stage started", "stage", "deliver", "channels", names)
	res.Deliveries = delivery.Deliver(ctx, r.channels, bundle, logger)
	r.summary(logger, res, start)
	return res, nil
}

func (r *Runner) summary(logger *zap.SugaredLogger, res *Result, start time.Time) {
	var delivered, failed []string
	for _, d := range res.Deliveries {
		if d.OK() {
			delivered = append(delivered, d.Channel)
		} else {
			failed = append(failed, d.Channel)
		}
	}
	logger.Infow("run finished",
		"stage", "summary",
		"projects", len(res.Digest.Projects),
		"skipped", res.Digest.Skipped,
		"delivered", delivered,
		"failed", failed,
		"succeeded", res.Succeeded(),
		"duration", time.Since(start),
	)
}
