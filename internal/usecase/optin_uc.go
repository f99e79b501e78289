package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
	"whatsapp-recruiting-funnel/internal/messaging"
	"whatsapp-recruiting-funnel/internal/payload"
)

// Compile-time check
var _ OptInUseCase = (*optInUC)(nil)

// errApplicationPending marks an opt-in that arrived before the creation task
// wrote its application. It is retried.
var errApplicationPending = errors.New("application not created yet")

// OptInUseCase moves a matched application into the interview step.
type OptInUseCase interface {
	adapter.TaskHandler
	OptIn(ctx context.Context, jobID, conversationID string) error
}

// MessageSender delivers a payload to a conversation.
type MessageSender interface {
	Send(ctx context.Context, address string, p payload.Payload, correlationID string) (adapter.SendResult, error)
}

// Translator returns localized message templates.
type Translator interface {
	T(key string, args ...interface{}) string
}

type OptInDeps struct {
	Conversations repository.ConversationRepository
	Jobs          repository.JobRepository
	Applications  repository.ApplicationRepository
	Interviews    adapter.InterviewGenerator
	Links         adapter.InterviewLinks
	Sender        MessageSender
	Messages      *messaging.Facade
	Translator    Translator
	Location      *time.Location
}

type optInUC struct {
	OptInDeps
	log *zerolog.Logger
	now func() time.Time
}

func NewOptInUseCase(deps OptInDeps, logger *zerolog.Logger) *optInUC {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Messages == nil {
		deps.Messages = messaging.Global()
	}
	l := logger.With().Str("component", "OptInUC").Logger()
	return &optInUC{OptInDeps: deps, log: &l, now: time.Now}
}

func (o *optInUC) TaskName() string { return TaskOptIn }

func (o *optInUC) HandleTask(ctx context.Context, t adapter.Task) error {
	data, err := DecodeTaskData[ApplicationTaskData](t.Data)
	if err != nil {
		return finish(o.log, t.Name, err)
	}
	ctx = logging.WithJobID(logging.WithConversationID(logging.WithTaskID(ctx, t.ID), data.ConversationID), data.JobID)
	err = o.OptIn(ctx, data.JobID, data.ConversationID)
	return finish(logging.With(ctx, o.log), t.Name, err)
}

// OptIn checks, in order, that the conversation, the job and the application
// exist and that the application is in progress at MATCH_WITH_JOB. Any
// mismatch returns an error matching domain.ErrNotFound or
// domain.ErrPreconditionFailed without changing state. A missing application
// for an open job the conversation opted into is a retryable error instead.
//
// After the step advance the interview generation and the confirmation
// message run independently; their failures are logged and do not fail the
// call, since a retry would stop at the step check anyway.
func (o *optInUC) OptIn(ctx context.Context, jobID, conversationID string) error {
	log := logging.With(ctx, o.log)
	defer logging.TraceDuration(log, "OptInUC.OptIn")()

	conv, err := o.Conversations.FindByID(ctx, conversationID)
	if err != nil {
		return lookupErr("conversation", conversationID, err)
	}
	job, err := o.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return lookupErr("job", jobID, err)
	}
	app, err := o.Applications.FindByJobAndConversation(ctx, jobID, conversationID)
	if errors.Is(err, domain.ErrNotFound) && job.IsOpen() && slices.Contains(conv.CurrentJobIDs, jobID) {
		return fmt.Errorf("opt-in for job %s and conversation %s: %w", jobID, conversationID, errApplicationPending)
	}
	if err != nil {
		return lookupErr("application for job "+jobID+" and conversation", conversationID, err)
	}
	if app.Status != model.ApplicationInProgress {
		return &domain.PreconditionError{Check: "application status", Expected: string(model.ApplicationInProgress), Actual: string(app.Status)}
	}
	if app.CurrentStep != model.StepMatchWithJob {
		return &domain.PreconditionError{Check: "application step", Expected: string(model.StepMatchWithJob), Actual: string(app.CurrentStep)}
	}

	ctx = logging.WithApplicationID(ctx, app.ID)
	log = logging.With(ctx, o.log)

	if err := o.Applications.Update(ctx, app.ID, model.StepPatch(model.StepInterview, o.now())); err != nil {
		return fmt.Errorf("advance application %s: %w", app.ID, err)
	}
	metrics.IncTransition(string(model.StepMatchWithJob), string(model.StepInterview))
	log.Info().Msg("application moved to interview")

	var (
		g                 errgroup.Group
		genErr, notifyErr error
	)
	g.Go(func() error {
		genErr = o.prepareInterview(ctx, app, job, conv)
		return genErr
	})
	g.Go(func() error {
		notifyErr = o.sendConfirmation(ctx, app, job, conv)
		return notifyErr
	})
	_ = g.Wait()

	if err := errors.Join(genErr, notifyErr); err != nil {
		log.Error().Err(err).Msg("opt-in effects incomplete")
	}
	return nil
}

func lookupErr(what, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(what, id)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}

func (o *optInUC) prepareInterview(ctx context.Context, app *model.Application, job *model.Job, conv *model.Conversation) error {
	plan, err := o.Interviews.GenerateInterview(ctx, job.Description, conv.Description())
	if err != nil {
		return fmt.Errorf("generate interview: %w", err)
	}
	data := &model.InterviewData{Script: plan.Script}
	for _, item := range plan.Checklist {
		data.Checklist = append(data.Checklist, model.ChecklistItem{Text: item})
	}
	now := o.now()
	if err := o.Applications.Update(ctx, app.ID, model.ApplicationPatch{InterviewData: data, UpdatedAt: &now}); err != nil {
		return fmt.Errorf("store interview: %w", err)
	}
	return nil
}

func (o *optInUC) sendConfirmation(ctx context.Context, app *model.Application, job *model.Job, conv *model.Conversation) error {
	link, err := o.Links.LinkFor(app.ID, conv.ID, job.ID)
	if err != nil {
		return fmt.Errorf("interview link: %w", err)
	}
	msg, err := o.confirmationMessage(job, conv, link)
	if err != nil {
		return err
	}
	if _, err := o.Sender.Send(ctx, conv.ID, msg, "optin:"+app.ID); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func (o *optInUC) confirmationMessage(job *model.Job, conv *model.Conversation, link string) (payload.Payload, error) {
	deadline := o.Translator.T("interview_deadline_open")
	if job.ApplyEnd > 0 {
		deadline = job.ApplyEndTime().In(o.Location).Format("02/01/2006 15:04")
	}
	tmpl, err := o.Messages.Create().Buttons(
		o.Translator.T("interview_invite"),
		[]payload.Button{messaging.URLButton(o.Translator.T("interview_button"), link)},
		messaging.ButtonsTitle(o.Translator.T("interview_title")),
	)
	if err != nil {
		return nil, fmt.Errorf("build confirmation: %w", err)
	}
	return o.Messages.Parse(tmpl, map[string]string{
		"nome":  conv.Name,
		"vaga":  job.Title,
		"prazo": deadline,
		"link":  link,
	})
}
