package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
	"valluvarvaasal/pkg/logger"
)

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	uploader FileUploader
	notifier *notifier
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	uploader FileUploader,
	presence Presence,
	notificationRepo repository.NotificationRepository,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		uploader: uploader,
		notifier: newNotifier(presence, notificationRepo),
	}
}

// FileUpload is one file carried by a file message.
type FileUpload struct {
	Content      io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

type ChatResponse struct {
	*entity.ChatThread
	EffectiveStatus string `json:"effective_status"`
}

func newChatResponse(chat *entity.ChatThread) *ChatResponse {
	return &ChatResponse{
		ChatThread:      chat,
		EffectiveStatus: chat.EffectiveStatus(time.Now()),
	}
}

// loadForActor fetches the thread and checks the actor may touch it:
// participants, the assigned support agent and admin, or anyone holding
// the support/admin role (support staff work across threads they were
// never explicitly assigned to).
func (uc *ChatUseCase) loadForActor(ctx context.Context, chatID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if chat.HasParticipant(actor.UID) ||
		actor.UID == chat.SupportUserID || actor.UID == chat.AdminID ||
		actor.HasRole(entity.RoleSupport) || actor.HasRole(entity.RoleAdmin) {
		return chat, nil
	}

	return nil, errors.Forbidden("You are not a participant of this chat", nil)
}

func (uc *ChatUseCase) GetChat(ctx context.Context, chatID string, actor entity.Identity) (*ChatResponse, error) {
	chat, err := uc.loadForActor(ctx, chatID, actor)
	if err != nil {
		return nil, err
	}
	return newChatResponse(chat), nil
}

func (uc *ChatUseCase) SendText(ctx context.Context, chatID string, sender entity.Identity, text string) (*entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Message text must not be empty", nil)
	}

	chat, err := uc.loadForActor(ctx, chatID, sender)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("This consultation is completed", nil)
	}

	message := &entity.ChatMessage{
		SenderID: sender.UID,
		Type:     entity.MessageTypeText,
		Text:     text,
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, chat.Participants, message)
	return message, nil
}

// SendFiles uploads each file, records it in the thread's files index
// under its assigned name, then appends one message referencing all of
// them. An upload failure aborts before any store write; a store failure
// after an upload leaves the blob orphaned, which is accepted.
func (uc *ChatUseCase) SendFiles(ctx context.Context, chatID string, sender entity.Identity, uploads []FileUpload) (*entity.ChatMessage, error) {
	if len(uploads) == 0 {
		return nil, errors.BadRequest("No files supplied", nil)
	}

	chat, err := uc.loadForActor(ctx, chatID, sender)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("This consultation is completed", nil)
	}

	// The naming rule counts what the index holds right now; names
	// assigned in this call are added to the working list so a multi-file
	// message numbers its files sequentially.
	existing, err := uc.chatRepo.ListFiles(ctx, chatID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(existing)+len(uploads))
	for _, f := range existing {
		names = append(names, f.Name)
	}

	var refs []entity.MessageFileRef
	for _, upload := range uploads {
		ext := entity.FileExtension(upload.OriginalName, upload.ContentType)
		name := entity.NextFileName(chat.ServiceType, names, ext)
		names = append(names, name)

		url, err := uc.uploader.Upload(ctx, chatObjectName(chatID, name), upload.ContentType, upload.Content)
		if err != nil {
			return nil, errors.Internal("Failed to upload file", err)
		}

		file := &entity.ChatFile{
			Name:         name,
			OriginalName: upload.OriginalName,
			Type:         upload.ContentType,
			Size:         upload.Size,
			URL:          url,
			UploadedBy:   sender.UID,
		}
		if err := uc.chatRepo.AddFile(ctx, chatID, file); err != nil {
			logger.LogChatError(chatID, "index_file", err)
			return nil, err
		}

		refs = append(refs, entity.MessageFileRef{
			ID:   file.ID,
			Name: file.Name,
			URL:  file.URL,
			Type: file.Type,
		})
	}

	message := &entity.ChatMessage{
		SenderID: sender.UID,
		Type:     entity.MessageTypeFile,
		Files:    refs,
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, chat.Participants, message)
	return message, nil
}

// SendVoice uploads a recording and appends a voice message. Recordings
// are webm audio; the duration is client-measured.
func (uc *ChatUseCase) SendVoice(ctx context.Context, chatID string, sender entity.Identity, content io.Reader, durationSeconds int) (*entity.ChatMessage, error) {
	if durationSeconds <= 0 {
		return nil, errors.BadRequest("Voice duration must be positive", nil)
	}

	chat, err := uc.loadForActor(ctx, chatID, sender)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("This consultation is completed", nil)
	}

	existing, err := uc.chatRepo.ListFiles(ctx, chatID)
	if err != nil {
		return nil, err
	}
	voiceCount := 0
	for _, f := range existing {
		if strings.HasPrefix(f.Name, "Voice_") {
			voiceCount++
		}
	}
	name := fmt.Sprintf("Voice_%d.webm", voiceCount+1)

	const contentType = "audio/webm"
	url, err := uc.uploader.Upload(ctx, chatObjectName(chatID, name), contentType, content)
	if err != nil {
		return nil, errors.Internal("Failed to upload voice recording", err)
	}

	file := &entity.ChatFile{
		Name:         name,
		OriginalName: name,
		Type:         contentType,
		URL:          url,
		UploadedBy:   sender.UID,
	}
	if err := uc.chatRepo.AddFile(ctx, chatID, file); err != nil {
		logger.LogChatError(chatID, "index_voice", err)
		return nil, err
	}

	message := &entity.ChatMessage{
		SenderID: sender.UID,
		Type:     entity.MessageTypeVoice,
		Voice: &entity.VoicePayload{
			URL:             url,
			DurationSeconds: durationSeconds,
			FileName:        name,
		},
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, message); err != nil {
		return nil, err
	}

	uc.notifier.notifyOffline(ctx, chatID, chat.Participants, message)
	return message, nil
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, chatID string, actor entity.Identity, limit, offset int) ([]*entity.ChatMessage, error) {
	if _, err := uc.loadForActor(ctx, chatID, actor); err != nil {
		return nil, err
	}
	return uc.chatRepo.ListMessages(ctx, chatID, limit, offset)
}

func (uc *ChatUseCase) MarkRead(ctx context.Context, chatID string, reader entity.Identity) error {
	if _, err := uc.loadForActor(ctx, chatID, reader); err != nil {
		return err
	}
	if err := uc.chatRepo.MarkMessagesRead(ctx, chatID, reader.UID); err != nil {
		return err
	}
	uc.notifier.markSeen(ctx, reader.UID, chatID)
	return nil
}

// SubscribeMessages opens a live view of the thread's log. Every change
// delivers the full current sequence, ascending by timestamp. The caller
// owns the cancel and must invoke it when done.
func (uc *ChatUseCase) SubscribeMessages(ctx context.Context, chatID string, actor entity.Identity) (<-chan []*entity.ChatMessage, func(), error) {
	if _, err := uc.loadForActor(ctx, chatID, actor); err != nil {
		return nil, nil, err
	}
	return uc.chatRepo.ListenMessages(ctx, chatID)
}

func (uc *ChatUseCase) ListFiles(ctx context.Context, chatID string, actor entity.Identity) ([]*entity.ChatFile, error) {
	if _, err := uc.loadForActor(ctx, chatID, actor); err != nil {
		return nil, err
	}
	return uc.chatRepo.ListFiles(ctx, chatID)
}

// ListNotifications returns the caller's pending offline notifications,
// newest first.
func (uc *ChatUseCase) ListNotifications(ctx context.Context, user entity.Identity, limit int) ([]*entity.Notification, error) {
	return uc.notifier.unseen(ctx, user.UID, limit)
}

func chatObjectName(chatID, name string) string {
	return fmt.Sprintf("chats/%s/%s", chatID, name)
}
