package usecase

import (
	"context"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/logger"
)

// notifier writes notification records for recipients who were offline
// when a message arrived. Online recipients are served by their live
// subscription instead. Failures are logged and swallowed: notifications
// are best-effort and never fail the append that triggered them.
type notifier struct {
	presence         Presence
	notificationRepo repository.NotificationRepository
}

func newNotifier(presence Presence, notificationRepo repository.NotificationRepository) *notifier {
	return &notifier{
		presence:         presence,
		notificationRepo: notificationRepo,
	}
}

func (n *notifier) markSeen(ctx context.Context, userID, chatID string) {
	if n == nil || n.notificationRepo == nil {
		return
	}
	if err := n.notificationRepo.MarkSeen(ctx, userID, chatID); err != nil {
		logger.Warn("Failed to clear notifications for %s on chat %s: %v", userID, chatID, err)
	}
}

func (n *notifier) unseen(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	if n == nil || n.notificationRepo == nil {
		return nil, nil
	}
	return n.notificationRepo.ListUnseen(ctx, userID, limit)
}

func (n *notifier) notifyOffline(ctx context.Context, chatID string, recipients []string, message *entity.ChatMessage) {
	if n == nil || n.notificationRepo == nil {
		return
	}

	author := message.SummarySenderID()
	for _, userID := range recipients {
		if userID == "" || userID == author || userID == entity.SystemSenderID {
			continue
		}
		if n.presence != nil && n.presence.IsOnline(ctx, userID) {
			continue
		}
		err := n.notificationRepo.Create(ctx, &entity.Notification{
			UserID:  userID,
			ChatID:  chatID,
			Preview: message.Preview(),
		})
		if err != nil {
			logger.Warn("Failed to write notification for %s on chat %s: %v", userID, chatID, err)
		}
	}
}
