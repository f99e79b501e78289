package repository

import (
	"context"

	"whatsapp-recruiting-funnel/internal/domain/model"
)

type JobRepository interface {
	FindByID(ctx context.Context, id string) (*model.Job, error)
	Save(ctx context.Context, j *model.Job) error
	UpdateStatus(ctx context.Context, id string, status model.JobStatus) error
	ListOpen(ctx context.Context) ([]*model.Job, error)
}
