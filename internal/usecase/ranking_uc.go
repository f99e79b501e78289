package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

// Compile-time check
var _ RankingUseCase = (*rankingUC)(nil)

// RankingResult is the outcome of one closure pass.
type RankingResult struct {
	// Pool holds the applications still eligible to advance past INTERVIEW.
	Pool []*model.Application
	// Rejected lists the ids rejected by this pass.
	Rejected []string
}

// RankingUseCase runs the cutoff when a job closes.
type RankingUseCase interface {
	adapter.TaskHandler
	CloseJob(ctx context.Context, jobID string) (RankingResult, error)
}

type rankingUC struct {
	jobs repository.JobRepository
	apps repository.ApplicationRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewRankingUseCase(jobs repository.JobRepository, apps repository.ApplicationRepository, logger *zerolog.Logger) *rankingUC {
	l := logger.With().Str("component", "RankingUC").Logger()
	return &rankingUC{jobs: jobs, apps: apps, log: &l, now: time.Now}
}

func (r *rankingUC) TaskName() string { return TaskJobClosed }

func (r *rankingUC) HandleTask(ctx context.Context, t adapter.Task) error {
	data, err := DecodeTaskData[JobClosedTaskData](t.Data)
	if err != nil {
		return finish(r.log, t.Name, err)
	}
	ctx = logging.WithJobID(logging.WithTaskID(ctx, t.ID), data.JobID)
	_, err = r.CloseJob(ctx, data.JobID)
	return finish(logging.With(ctx, r.log), t.Name, err)
}

// partition splits applications into the ranking pool and those to reject.
// Already rejected applications and those past INTERVIEW are left alone.
func partition(apps []*model.Application) (pool, reject []*model.Application) {
	for _, a := range apps {
		switch {
		case a.IsRejected():
		case a.Status == model.ApplicationInProgress && a.CurrentStep.Beyond(model.StepInterview):
		case a.IsInterviewCandidate() && a.InterviewData != nil:
			pool = append(pool, a)
		default:
			reject = append(reject, a)
		}
	}
	return pool, reject
}

// CloseJob reads every application of a closed job before writing, then
// rejects those that cannot advance. Running it again is harmless.
func (r *rankingUC) CloseJob(ctx context.Context, jobID string) (RankingResult, error) {
	log := logging.With(ctx, r.log)
	defer logging.TraceDuration(log, "RankingUC.CloseJob")()

	job, err := r.jobs.FindByID(ctx, jobID)
	if err != nil {
		return RankingResult{}, lookupErr("job", jobID, err)
	}
	if job.Status != model.JobStatusClosed {
		return RankingResult{}, &domain.PreconditionError{Check: "job status", Expected: string(model.JobStatusClosed), Actual: string(job.Status)}
	}

	apps, err := r.apps.ListByJob(ctx, jobID)
	if err != nil {
		return RankingResult{}, fmt.Errorf("list applications: %w", err)
	}
	pool, reject := partition(apps)

	res := RankingResult{Pool: pool}
	var errs []error
	now := r.now()
	for _, a := range reject {
		if err := r.apps.Update(ctx, a.ID, model.RejectPatch(now)); err != nil {
			errs = append(errs, fmt.Errorf("reject %s: %w", a.ID, err))
			continue
		}
		metrics.IncTransition(string(a.CurrentStep), string(model.ApplicationRejected))
		res.Rejected = append(res.Rejected, a.ID)
	}
	log.Info().
		Int("applications", len(apps)).
		Int("pool", len(pool)).
		Int("rejected", len(res.Rejected)).
		Msg("job closure pass finished")
	return res, errors.Join(errs...)
}
