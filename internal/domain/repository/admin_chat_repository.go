package repository

import (
	"context"

	"valluvarvaasal/internal/domain/entity"
)

// AdminChatRepository stores the admin-client side channels. Message
// methods follow the same contracts as ChatRepository's.
type AdminChatRepository interface {
	GetByID(ctx context.Context, id string) (*entity.AdminChat, error)
	Update(ctx context.Context, chat *entity.AdminChat) error

	// CreateIfNoneActive creates the channel unless an active one already
	// exists for the same main thread, in which case the existing channel
	// is returned with created=false.
	CreateIfNoneActive(ctx context.Context, chat *entity.AdminChat) (existing *entity.AdminChat, created bool, err error)

	ListByClient(ctx context.Context, clientID string) ([]*entity.AdminChat, error)

	AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error)
	ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error)
	MarkMessagesRead(ctx context.Context, chatID, readerID string) error
}
