package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

type JobUseCase interface {
	Get(ctx context.Context, id string) (*model.Job, error)
	Save(ctx context.Context, j *model.Job) error
	// SetStatus is a no-op when the job already has status.
	SetStatus(ctx context.Context, id string, status model.JobStatus) error
	// CloseExpired closes every open job whose application window ended before now.
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

type jobUC struct {
	jobs repository.JobRepository
	log  *zerolog.Logger
}

func NewJobUseCase(jobs repository.JobRepository, logger *zerolog.Logger) *jobUC {
	l := logger.With().Str("component", "JobUC").Logger()
	return &jobUC{jobs: jobs, log: &l}
}

func (u *jobUC) Get(ctx context.Context, id string) (*model.Job, error) {
	return u.jobs.FindByID(ctx, id)
}

func (u *jobUC) Save(ctx context.Context, j *model.Job) error {
	ve := &domain.ValidationError{}
	if j.Title == "" {
		ve.Add("title", "required")
	}
	if j.Status != model.JobStatusOpen && j.Status != model.JobStatusClosed {
		ve.Add("status", "must be open or closed")
	}
	if j.ApplyEnd > 0 && j.ApplyStart > j.ApplyEnd {
		ve.Add("applyEnd", "must not precede applyStart")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}
	return u.jobs.Save(ctx, j)
}

func (u *jobUC) SetStatus(ctx context.Context, id string, status model.JobStatus) error {
	if status != model.JobStatusOpen && status != model.JobStatusClosed {
		ve := &domain.ValidationError{}
		ve.Add("status", "must be open or closed")
		return ve
	}
	job, err := u.jobs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == status {
		return nil
	}
	if err := u.jobs.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	u.log.Info().Str("job_id", id).Str("from", string(job.Status)).Str("to", string(status)).Msg("job status changed")
	return nil
}

func (u *jobUC) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	open, err := u.jobs.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open jobs: %w", err)
	}
	closed := 0
	for _, j := range open {
		if !j.Expired(now) {
			continue
		}
		if err := u.jobs.UpdateStatus(ctx, j.ID, model.JobStatusClosed); err != nil {
			return closed, fmt.Errorf("close job %s: %w", j.ID, err)
		}
		closed++
	}
	return closed, nil
}
