package repository

import (
	"context"

	"whatsapp-recruiting-funnel/internal/domain/model"
)

type ConversationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	Save(ctx context.Context, c *model.Conversation) error
	Touch(ctx context.Context, id string, lastMessageTimestamp int64) error
}
