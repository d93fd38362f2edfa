package repository

import (
	"context"

	"valluvarvaasal/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListUnseen(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkSeen(ctx context.Context, userID, chatID string) error
}
