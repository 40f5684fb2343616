package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/quillbooks/quillbooks/internal/billing/invoices"
	jobmetrics "github.com/quillbooks/quillbooks/internal/jobs"
	"github.com/quillbooks/quillbooks/internal/shared"
)

// GenerateDueJob sweeps seed invoices and derives every occurrence whose
// schedule says it is due.
type GenerateDueJob struct {
	Invoices    *invoices.Service
	Idempotency *shared.IdempotencyStore
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

func NewGenerateDueJob(svc *invoices.Service, idem *shared.IdempotencyStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *GenerateDueJob {
	return &GenerateDueJob{Invoices: svc, Idempotency: idem, Logger: logger, Metrics: metrics}
}

// Handle executes one sweep. A replayed run ID is skipped without retry so a
// re-delivered cron task cannot double-generate.
func (j *GenerateDueJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil {
		return errors.New("generate due: handler not configured")
	}
	var payload GenerateDuePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if payload.RunID != "" && j.Idempotency != nil {
		if err := j.Idempotency.CheckAndInsert(ctx, payload.RunID, "billing"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				j.Logger.Info("generation sweep already processed", slog.String("run_id", payload.RunID))
				return nil
			}
			return err
		}
	}

	tracker := j.Metrics.Track(TaskBillingGenerateDue)
	generated, err := j.Invoices.GenerateDue(ctx)
	if err != nil {
		if payload.RunID != "" && j.Idempotency != nil {
			// Release the key so the retry is not treated as a replay.
			_ = j.Idempotency.Delete(ctx, payload.RunID)
		}
		j.Logger.Error("generation sweep finished with errors",
			slog.String("run_id", payload.RunID),
			slog.Int("generated", generated),
			slog.Any("error", err))
		return tracker.End(err)
	}

	j.Metrics.AddGenerated(generated)
	if j.Idempotency != nil {
		if err := j.Idempotency.Cleanup(ctx, 24*time.Hour); err != nil {
			j.Logger.Warn("idempotency cleanup", slog.Any("error", err))
		}
	}
	j.Logger.Info("generation sweep complete",
		slog.String("run_id", payload.RunID),
		slog.Int("generated", generated))
	return tracker.End(nil)
}

// GenerateSeedJob derives the next invoice from a single targeted seed.
type GenerateSeedJob struct {
	Invoices *invoices.Service
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

func NewGenerateSeedJob(svc *invoices.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *GenerateSeedJob {
	return &GenerateSeedJob{Invoices: svc, Logger: logger, Metrics: metrics}
}

func (j *GenerateSeedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil {
		return errors.New("generate seed: handler not configured")
	}
	var payload GenerateSeedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskBillingGenerateSeed)
	derived, err := j.Invoices.GenerateNext(ctx, payload.SeedID, payload.Force)
	if err != nil {
		// Rule violations will not resolve themselves on retry.
		if errors.Is(err, shared.ErrRuleViolation) {
			j.Logger.Warn("seed not generable",
				slog.Int64("seed_id", payload.SeedID),
				slog.Any("error", err))
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		return tracker.End(err)
	}

	j.Metrics.AddGenerated(1)
	j.Logger.Info("invoice generated from seed",
		slog.String("run_id", payload.RunID),
		slog.Int64("seed_id", payload.SeedID),
		slog.Int64("invoice_id", derived.ID),
		slog.String("number", derived.Number))
	return tracker.End(nil)
}
