package docrepo

import (
	"context"
	"fmt"
	"time"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

type ApplicationRepo struct {
	store repository.DocumentStore
	now   func() time.Time
}

func NewApplicationRepo(store repository.DocumentStore) *ApplicationRepo {
	return &ApplicationRepo{store: store, now: time.Now}
}

func (r *ApplicationRepo) FindByID(ctx context.Context, id string) (*model.Application, error) {
	a, err := get[model.Application](ctx, r.store, model.CollectionApplications, id)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

// FindByJobAndConversation returns the oldest application for the pair.
func (r *ApplicationRepo) FindByJobAndConversation(ctx context.Context, jobID, conversationID string) (*model.Application, error) {
	apps, err := query[model.Application](ctx, r.store, model.CollectionApplications,
		repository.Eq("jobId", jobID),
		repository.Eq("conversationId", conversationID),
	)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, domain.ErrNotFound
	}
	oldest := apps[0]
	for _, a := range apps[1:] {
		if a.CreatedAt.Before(oldest.CreatedAt) {
			oldest = a
		}
	}
	return oldest, nil
}

func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	return query[model.Application](ctx, r.store, model.CollectionApplications, repository.Eq("jobId", jobID))
}

// Create stores a, assigning an id when it has none.
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	if a.JobID == "" || a.ConversationID == "" {
		return fmt.Errorf("%w: application needs jobId and conversationId", domain.ErrInvalidArgument)
	}
	if a.ID == "" {
		a.ID = NewID(r.now())
	}
	return r.store.Set(ctx, model.CollectionApplications, a.ID, a)
}

func (r *ApplicationRepo) Update(ctx context.Context, id string, patch model.ApplicationPatch) error {
	return r.store.Update(ctx, model.CollectionApplications, id, patch)
}
