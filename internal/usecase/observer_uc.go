package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

// Compile-time check
var _ ObserverUseCase = (*observerUC)(nil)

// ObserverUseCase turns document changes into funnel tasks.
type ObserverUseCase interface {
	HandleChange(ctx context.Context, ev model.ChangeEvent) error
}

type observerUC struct {
	tasks      adapter.TaskQueue
	optInDelay time.Duration
	log        *zerolog.Logger
	now        func() time.Time
}

// NewObserverUseCase schedules opt-in tasks optInDelay after the matching
// creation task so the application usually exists when opt-in runs.
func NewObserverUseCase(tasks adapter.TaskQueue, optInDelay time.Duration, logger *zerolog.Logger) *observerUC {
	l := logger.With().Str("component", "ObserverUC").Logger()
	return &observerUC{tasks: tasks, optInDelay: optInDelay, log: &l, now: time.Now}
}

func (o *observerUC) HandleChange(ctx context.Context, ev model.ChangeEvent) error {
	metrics.IncChangeEvent(ev.Collection, string(ev.Kind))
	if ev.Kind == model.ChangeDelete {
		return nil
	}
	switch ev.Collection {
	case model.CollectionConversations:
		return o.conversationChanged(ctx, ev)
	case model.CollectionJobs:
		return o.jobChanged(ctx, ev)
	default:
		return nil
	}
}

func snapshot[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		ve := &domain.ValidationError{}
		ve.Add("snapshot", err.Error())
		return nil, ve
	}
	return &v, nil
}

func (o *observerUC) conversationChanged(ctx context.Context, ev model.ChangeEvent) error {
	before, err := snapshot[model.Conversation](ev.Before)
	if err != nil {
		return err
	}
	after, err := snapshot[model.Conversation](ev.After)
	if err != nil {
		return err
	}
	delta := model.NewConversationDelta(ev.Kind, before, after)

	now := o.now()
	var errs []error
	for _, jobID := range delta.NewJobIDs() {
		data := ApplicationTaskData{JobID: jobID, ConversationID: ev.DocID}
		if err := o.tasks.Enqueue(ctx, TaskCreateApplication, data, now); err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s for job %s: %w", TaskCreateApplication, jobID, err))
		}
	}
	for _, jobID := range delta.OptIns.Added {
		data := ApplicationTaskData{JobID: jobID, ConversationID: ev.DocID}
		if err := o.tasks.Enqueue(ctx, TaskOptIn, data, now.Add(o.optInDelay)); err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s for job %s: %w", TaskOptIn, jobID, err))
		}
	}
	if n := len(delta.NewJobIDs()); n > 0 {
		o.log.Debug().Int("new_jobs", n).Int("opt_ins", len(delta.OptIns.Added)).Msg("conversation change scheduled tasks")
	}
	return errors.Join(errs...)
}

func (o *observerUC) jobChanged(ctx context.Context, ev model.ChangeEvent) error {
	before, err := snapshot[model.Job](ev.Before)
	if err != nil {
		return err
	}
	after, err := snapshot[model.Job](ev.After)
	if err != nil {
		return err
	}
	if !model.NewJobDelta(ev.Kind, before, after).Closed() {
		return nil
	}
	if err := o.tasks.Enqueue(ctx, TaskJobClosed, JobClosedTaskData{JobID: ev.DocID}, o.now()); err != nil {
		return fmt.Errorf("enqueue %s for job %s: %w", TaskJobClosed, ev.DocID, err)
	}
	o.log.Info().Str("job_id", ev.DocID).Msg("job closed, ranking pass scheduled")
	return nil
}
