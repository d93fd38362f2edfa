package usecase

import (
	"context"
	"fmt"
	"strings"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
)

// AdminChatUseCase manages the admin-client side channels. A channel is a
// peer of the main thread for messaging purposes but keeps its own log
// and its own terminal state.
type AdminChatUseCase struct {
	adminChatRepo repository.AdminChatRepository
	chatRepo      repository.ChatRepository
	userRepo      repository.UserRepository
	notifier      *notifier
}

func NewAdminChatUseCase(
	adminChatRepo repository.AdminChatRepository,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	presence Presence,
	notificationRepo repository.NotificationRepository,
) *AdminChatUseCase {
	return &AdminChatUseCase{
		adminChatRepo: adminChatRepo,
		chatRepo:      chatRepo,
		userRepo:      userRepo,
		notifier:      newNotifier(presence, notificationRepo),
	}
}

// Open creates the side channel for a main thread, or returns the active
// one if it already exists. A fresh channel gets a seeded system message
// and a cross-reference system message in the main thread's log carrying
// the channel id.
func (uc *AdminChatUseCase) Open(ctx context.Context, mainChatID string, actor entity.Identity, adminID string) (*entity.AdminChat, error) {
	mainChat, err := uc.chatRepo.GetByID(ctx, mainChatID)
	if err != nil {
		return nil, err
	}
	if actor.UID != mainChat.ClientID && !actor.HasRole(entity.RoleAdmin) && !actor.HasRole(entity.RoleSupport) {
		return nil, errors.Forbidden("You cannot open a support conversation for this chat", nil)
	}

	if adminID == "" {
		admins, err := uc.userRepo.ListByRole(ctx, entity.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if len(admins) == 0 {
			return nil, errors.NotFound("Admin", nil)
		}
		adminID = admins[0].ID
	} else if _, err := uc.userRepo.GetByID(ctx, adminID); err != nil {
		return nil, errors.NotFound("Admin", err)
	}

	channel := &entity.AdminChat{
		MainChatID: mainChatID,
		ClientID:   mainChat.ClientID,
		AdminID:    adminID,
	}

	channel, created, err := uc.adminChatRepo.CreateIfNoneActive(ctx, channel)
	if err != nil {
		return nil, err
	}
	if !created {
		return channel, nil
	}

	seed := &entity.ChatMessage{
		SenderID: entity.SystemSenderID,
		Type:     entity.MessageTypeSystem,
		Text:     "An admin will assist you here with your consultation.",
	}
	if err := uc.adminChatRepo.AppendMessage(ctx, channel.ID, seed); err != nil {
		return nil, err
	}

	crossRef := &entity.ChatMessage{
		SenderID: entity.SystemSenderID,
		Type:     entity.MessageTypeSystem,
		Text:     fmt.Sprintf("A support conversation with an admin has been opened. [admin-chat:%s]", channel.ID),
	}
	if err := uc.chatRepo.AppendMessage(ctx, mainChatID, crossRef); err != nil {
		return nil, err
	}

	return channel, nil
}

func (uc *AdminChatUseCase) loadForActor(ctx context.Context, chatID string, actor entity.Identity) (*entity.AdminChat, error) {
	channel, err := uc.adminChatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if actor.UID != channel.ClientID && actor.UID != channel.AdminID && !actor.HasRole(entity.RoleAdmin) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}
	return channel, nil
}

func (uc *AdminChatUseCase) Get(ctx context.Context, chatID string, actor entity.Identity) (*entity.AdminChat, error) {
	return uc.loadForActor(ctx, chatID, actor)
}

func (uc *AdminChatUseCase) ListForClient(ctx context.Context, client entity.Identity) ([]*entity.AdminChat, error) {
	return uc.adminChatRepo.ListByClient(ctx, client.UID)
}

func (uc *AdminChatUseCase) SendText(ctx context.Context, chatID string, sender entity.Identity, text string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message text must not be empty", nil)
	}

	channel, err := uc.loadForActor(ctx, chatID, sender)
	if err != nil {
		return nil, err
	}
	if channel.IsResolved() {
		return nil, errors.BadRequest("This conversation has been resolved", nil)
	}

	message := &entity.ChatMessage{
		SenderID: sender.UID,
		Type:     entity.MessageTypeText,
		Text:     text,
	}
	if err := uc.adminChatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, []string{channel.ClientID, channel.AdminID}, message)
	return message, nil
}

func (uc *AdminChatUseCase) GetMessages(ctx context.Context, chatID string, actor entity.Identity, limit, offset int) ([]*entity.ChatMessage, error) {
	if _, err := uc.loadForActor(ctx, chatID, actor); err != nil {
		return nil, err
	}
	return uc.adminChatRepo.ListMessages(ctx, chatID, limit, offset)
}

func (uc *AdminChatUseCase) MarkRead(ctx context.Context, chatID string, reader entity.Identity) error {
	if _, err := uc.loadForActor(ctx, chatID, reader); err != nil {
		return err
	}
	if err := uc.adminChatRepo.MarkMessagesRead(ctx, chatID, reader.UID); err != nil {
		return err
	}
	uc.notifier.markSeen(ctx, reader.UID, chatID)
	return nil
}

func (uc *AdminChatUseCase) SubscribeMessages(ctx context.Context, chatID string, actor entity.Identity) (<-chan []*entity.ChatMessage, func(), error) {
	if _, err := uc.loadForActor(ctx, chatID, actor); err != nil {
		return nil, nil, err
	}
	return uc.adminChatRepo.ListenMessages(ctx, chatID)
}

// Resolve closes the channel. One-way: a resolved channel stays resolved;
// a new concern opens a new channel.
func (uc *AdminChatUseCase) Resolve(ctx context.Context, chatID string, actor entity.Identity) (*entity.AdminChat, error) {
	channel, err := uc.loadForActor(ctx, chatID, actor)
	if err != nil {
		return nil, err
	}
	if channel.IsResolved() {
		return channel, nil
	}

	channel.Status = entity.AdminChatStatusResolved
	if err := uc.adminChatRepo.Update(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}
