package usecase

import (
	"context"
	"strings"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
)

// SupportUseCase relays messages through a support agent. Both directions
// are plain appends to the thread's log with attribution fields; there is
// no separate channel.
type SupportUseCase struct {
	chatRepo repository.ChatRepository
	notifier *notifier
}

func NewSupportUseCase(
	chatRepo repository.ChatRepository,
	presence Presence,
	notificationRepo repository.NotificationRepository,
) *SupportUseCase {
	return &SupportUseCase{
		chatRepo: chatRepo,
		notifier: newNotifier(presence, notificationRepo),
	}
}

// SendAsAstrologer posts a message the client sees as coming from the
// astrologer while recording the support agent as its author. The thread
// need not have an astrologer assigned yet; the roster preview still
// names the agent who typed.
func (uc *SupportUseCase) SendAsAstrologer(ctx context.Context, chatID string, support entity.Identity, text string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message text must not be empty", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("This consultation is completed", nil)
	}

	message := &entity.ChatMessage{
		SenderID:       chat.AstrologerID,
		Type:           entity.MessageTypeText,
		Text:           text,
		ActualSenderID: support.UID,
		SentBySupport:  true,
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, []string{chat.ClientID}, message)
	return message, nil
}

// SendToAstrologer posts a support message directed at the astrologer.
// Fails when no astrologer is assigned.
func (uc *SupportUseCase) SendToAstrologer(ctx context.Context, chatID string, support entity.Identity, text string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message text must not be empty", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.AstrologerID == "" {
		return nil, errors.NotFound("Astrologer", nil)
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("This consultation is completed", nil)
	}

	message := &entity.ChatMessage{
		SenderID:         support.UID,
		Type:             entity.MessageTypeText,
		Text:             text,
		SentToAstrologer: true,
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, []string{chat.AstrologerID}, message)
	return message, nil
}
