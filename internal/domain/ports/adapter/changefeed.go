package adapter

import (
	"context"

	"whatsapp-recruiting-funnel/internal/domain/model"
)

type ChangePublisher interface {
	Publish(ctx context.Context, ev model.ChangeEvent) error
}

type ChangeHandler func(ctx context.Context, ev model.ChangeEvent) error
