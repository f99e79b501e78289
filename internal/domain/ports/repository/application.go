package repository

import (
	"context"

	"whatsapp-recruiting-funnel/internal/domain/model"
)

// ApplicationRepository persists funnel records. There is no uniqueness
// constraint on (jobId, conversationId); callers look up before creating.
type ApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Application, error)
	// FindByJobAndConversation returns domain.ErrNotFound when no application exists for the pair.
	FindByJobAndConversation(ctx context.Context, jobID, conversationID string) (*model.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.Application, error)
	Create(ctx context.Context, a *model.Application) error
	Update(ctx context.Context, id string, patch model.ApplicationPatch) error
}
