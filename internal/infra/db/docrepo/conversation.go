package docrepo

import (
	"context"
	"fmt"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

type ConversationRepo struct {
	store repository.DocumentStore
}

func NewConversationRepo(store repository.DocumentStore) *ConversationRepo {
	return &ConversationRepo{store: store}
}

func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	c, err := get[model.Conversation](ctx, r.store, model.CollectionConversations, id)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (r *ConversationRepo) Save(ctx context.Context, c *model.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("%w: conversation id is required", domain.ErrInvalidArgument)
	}
	return r.store.Set(ctx, model.CollectionConversations, c.ID, c)
}

func (r *ConversationRepo) Touch(ctx context.Context, id string, lastMessageTimestamp int64) error {
	return r.store.Update(ctx, model.CollectionConversations, id, map[string]any{
		"lastMessageTimestamp": lastMessageTimestamp,
	})
}
