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
var _ MatchUseCase = (*matchUC)(nil)

// MatchUseCase creates the Application for a newly matched or opted-in job.
type MatchUseCase interface {
	adapter.TaskHandler
	// CreateApplication is a no-op returning the existing record when the pair
	// already has an application. A pair matched to a job that is no longer
	// open is recorded as rejected.
	CreateApplication(ctx context.Context, jobID, conversationID string) (app *model.Application, created bool, err error)
}

type matchUC struct {
	apps    repository.ApplicationRepository
	jobs    repository.JobRepository
	locker  adapter.Locker
	lockTTL time.Duration
	log     *zerolog.Logger
	now     func() time.Time
}

func NewMatchUseCase(apps repository.ApplicationRepository, jobs repository.JobRepository, locker adapter.Locker, lockTTL time.Duration, logger *zerolog.Logger) *matchUC {
	l := logger.With().Str("component", "MatchUC").Logger()
	return &matchUC{apps: apps, jobs: jobs, locker: locker, lockTTL: lockTTL, log: &l, now: time.Now}
}

func (m *matchUC) TaskName() string { return TaskCreateApplication }

func (m *matchUC) HandleTask(ctx context.Context, t adapter.Task) error {
	data, err := DecodeTaskData[ApplicationTaskData](t.Data)
	if err != nil {
		return finish(m.log, t.Name, err)
	}
	ctx = logging.WithJobID(logging.WithConversationID(logging.WithTaskID(ctx, t.ID), data.ConversationID), data.JobID)
	_, _, err = m.CreateApplication(ctx, data.JobID, data.ConversationID)
	return finish(logging.With(ctx, m.log), t.Name, err)
}

func lockKey(jobID, conversationID string) string {
	return "application:" + jobID + ":" + conversationID
}

func (m *matchUC) CreateApplication(ctx context.Context, jobID, conversationID string) (*model.Application, bool, error) {
	log := logging.With(ctx, m.log)
	defer logging.TraceDuration(log, "MatchUC.CreateApplication")()

	if jobID == "" || conversationID == "" {
		ve := &domain.ValidationError{}
		ve.Add("jobId/conversationId", "required")
		return nil, false, ve
	}

	// A concurrent creator holding the lock makes this attempt fail; the retry
	// then finds the record it wrote.
	key := lockKey(jobID, conversationID)
	token, err := m.locker.TryLock(ctx, key, m.lockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			metrics.IncLock("busy")
		} else {
			metrics.IncLock("error")
		}
		return nil, false, fmt.Errorf("lock %s: %w", key, err)
	}
	metrics.IncLock("acquired")
	defer func() {
		if uerr := m.locker.Unlock(context.WithoutCancel(ctx), key, token); uerr != nil {
			log.Warn().Err(uerr).Str("key", key).Msg("unlock failed")
		}
	}()

	existing, err := m.apps.FindByJobAndConversation(ctx, jobID, conversationID)
	switch {
	case err == nil:
		log.Info().Str("application_id", existing.ID).Msg("application already exists")
		if existing.Status == model.ApplicationInProgress && existing.CurrentStep == model.StepMatchWithJob {
			if err := m.rejectIfClosed(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("find application: %w", err)
	}

	job, err := m.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, false, lookupErr("job", jobID, err)
	}

	app := model.NewApplication("", jobID, conversationID, m.now())
	if !job.IsOpen() {
		// the ranking pass for this job may already have run
		app.Status = model.ApplicationRejected
	}
	if err := m.apps.Create(ctx, app); err != nil {
		return nil, false, fmt.Errorf("create application: %w", err)
	}
	metrics.IncTransition("", string(model.StepMatchWithJob))
	if app.IsRejected() {
		metrics.IncTransition(string(model.StepMatchWithJob), string(model.ApplicationRejected))
		log.Info().Str("application_id", app.ID).Str("job_status", string(job.Status)).Msg("application created for a closed job, rejected")
		return app, true, nil
	}
	log.Info().Str("application_id", app.ID).Msg("application created")

	// A closure landing between the job read and the insert can rank without
	// this record.
	if err := m.rejectIfClosed(ctx, app); err != nil {
		return nil, false, err
	}
	return app, true, nil
}

func (m *matchUC) rejectIfClosed(ctx context.Context, app *model.Application) error {
	job, err := m.jobs.FindByID(ctx, app.JobID)
	if err != nil {
		return fmt.Errorf("recheck job %s: %w", app.JobID, err)
	}
	if job.IsOpen() {
		return nil
	}
	now := m.now()
	if err := m.apps.Update(ctx, app.ID, model.RejectPatch(now)); err != nil {
		return fmt.Errorf("reject %s: %w", app.ID, err)
	}
	app.Status = model.ApplicationRejected
	app.UpdatedAt = now
	metrics.IncTransition(string(model.StepMatchWithJob), string(model.ApplicationRejected))
	logging.With(ctx, m.log).Info().Str("application_id", app.ID).Msg("job closed during creation, application rejected")
	return nil
}
