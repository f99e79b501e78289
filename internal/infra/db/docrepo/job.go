package docrepo

import (
	"context"
	"time"

	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	store repository.DocumentStore
	now   func() time.Time
}

func NewJobRepo(store repository.DocumentStore) *JobRepo {
	return &JobRepo{store: store, now: time.Now}
}

func (r *JobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	j, err := get[model.Job](ctx, r.store, model.CollectionJobs, id)
	if err != nil {
		return nil, err
	}
	j.ID = id
	return j, nil
}

// Save stores j, assigning an id when it has none.
func (r *JobRepo) Save(ctx context.Context, j *model.Job) error {
	if j.ID == "" {
		j.ID = NewID(r.now())
	}
	return r.store.Set(ctx, model.CollectionJobs, j.ID, j)
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	return r.store.Update(ctx, model.CollectionJobs, id, map[string]any{"status": status})
}

func (r *JobRepo) ListOpen(ctx context.Context) ([]*model.Job, error) {
	return query[model.Job](ctx, r.store, model.CollectionJobs, repository.Eq("status", model.JobStatusOpen))
}
