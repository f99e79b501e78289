package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
	"whatsapp-recruiting-funnel/internal/infra/logging"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

// OptInButtonPrefix marks reply buttons whose id carries a job id to opt into.
const OptInButtonPrefix = "optin:"

// InboundMessage is the minimal inbound chat event.
type InboundMessage struct {
	From      string `json:"from" validate:"required,min=8,max=32"`
	Name      string `json:"name"`
	Photo     string `json:"photo,omitempty" validate:"omitempty,url"`
	Text      string `json:"text,omitempty"`
	ButtonID  string `json:"buttonId,omitempty"`
	Timestamp int64  `json:"timestamp" validate:"gt=0"`
}

type ConversationUseCase interface {
	// RecordInbound creates the conversation on its first message and touches it afterwards.
	RecordInbound(ctx context.Context, msg InboundMessage) (*model.Conversation, bool, error)
	RecordMatch(ctx context.Context, conversationID, jobID string, fitScore float64) error
	OptIn(ctx context.Context, conversationID, jobID string) error
}

type conversationUC struct {
	convs repository.ConversationRepository
	jobs  repository.JobRepository
	log   *zerolog.Logger
	dev   bool
}

func NewConversationUseCase(convs repository.ConversationRepository, jobs repository.JobRepository, logger *zerolog.Logger, dev bool) *conversationUC {
	l := logger.With().Str("component", "ConversationUC").Logger()
	return &conversationUC{convs: convs, jobs: jobs, log: &l, dev: dev}
}

func (c *conversationUC) RecordInbound(ctx context.Context, msg InboundMessage) (*model.Conversation, bool, error) {
	if err := validateStruct(msg); err != nil {
		return nil, false, err
	}
	ctx = logging.WithConversationID(ctx, logging.Redact(msg.From, c.dev))
	log := logging.With(ctx, c.log)

	conv, err := c.convs.FindByID(ctx, msg.From)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		conv = model.NewConversation(msg.From, msg.Name, msg.Timestamp)
		conv.Photo = msg.Photo
		if err := c.convs.Save(ctx, conv); err != nil {
			return nil, false, fmt.Errorf("create conversation: %w", err)
		}
		log.Info().Msg("conversation created")
		return conv, true, c.handleButton(ctx, conv, msg.ButtonID)
	case err != nil:
		return nil, false, fmt.Errorf("load conversation: %w", err)
	}

	if msg.Timestamp > conv.LastMessageTimestamp {
		if err := c.convs.Touch(ctx, conv.ID, msg.Timestamp); err != nil {
			return nil, false, fmt.Errorf("touch conversation: %w", err)
		}
		conv.LastMessageTimestamp = msg.Timestamp
	}
	return conv, false, c.handleButton(ctx, conv, msg.ButtonID)
}

func (c *conversationUC) handleButton(ctx context.Context, conv *model.Conversation, buttonID string) error {
	jobID, ok := strings.CutPrefix(buttonID, OptInButtonPrefix)
	if !ok || jobID == "" {
		return nil
	}
	return c.OptIn(ctx, conv.ID, jobID)
}

// RecordMatch appends a fit result unless the job already has one.
func (c *conversationUC) RecordMatch(ctx context.Context, conversationID, jobID string, fitScore float64) error {
	if fitScore < 0 || fitScore > 1 {
		ve := &domain.ValidationError{}
		ve.Add("fitScore", "must be between 0 and 1")
		return ve
	}
	return c.mutate(ctx, conversationID, jobID, func(conv *model.Conversation) bool {
		return conv.AddFitResult(jobID, fitScore)
	})
}

// OptIn adds jobID to the conversation's opt-in set.
func (c *conversationUC) OptIn(ctx context.Context, conversationID, jobID string) error {
	return c.mutate(ctx, conversationID, jobID, func(conv *model.Conversation) bool {
		return conv.OptIn(jobID)
	})
}

func (c *conversationUC) mutate(ctx context.Context, conversationID, jobID string, apply func(*model.Conversation) bool) error {
	job, err := c.jobs.FindByID(ctx, jobID)
	if err != nil {
		return lookupErr("job", jobID, err)
	}
	if !job.IsOpen() {
		return &domain.PreconditionError{Check: "job status", Expected: string(model.JobStatusOpen), Actual: string(job.Status)}
	}
	conv, err := c.convs.FindByID(ctx, conversationID)
	if err != nil {
		return lookupErr("conversation", conversationID, err)
	}
	if !apply(conv) {
		return nil
	}
	if err := c.convs.Save(ctx, conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}
