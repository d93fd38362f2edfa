package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
	"valluvarvaasal/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) chatRef(chatID string) *firestore.DocumentRef {
	return r.client.Collection("chats").Doc(chatID)
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.ChatThread) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.Status == "" {
		chat.Status = entity.StatusActive
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	if err := r.commitChat(ctx, chat); err != nil {
		return errors.FromFirestore("create chat", err)
	}

	return nil
}

// commitChat writes the thread document plus its canonical expiry
// timestamp. The expiry lives outside the struct mapping so that legacy
// millisecond values can be normalized on read; this is the only place it
// is written.
func (r *firestoreChatRepository) commitChat(ctx context.Context, chat *entity.ChatThread) error {
	batch := r.client.Batch()
	batch.Set(r.chatRef(chat.ID), chat)
	if !chat.ExpiryTimestamp.IsZero() {
		batch.Update(r.chatRef(chat.ID), []firestore.Update{
			{Path: "expiryTimestamp", Value: chat.ExpiryTimestamp},
		})
	}
	_, err := batch.Commit(ctx)
	return err
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.ChatThread, error) {
	doc, err := r.chatRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.FromFirestore("get chat", err)
	}

	chat, err := chatFromDoc(doc)
	if err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return chat, nil
}

func (r *firestoreChatRepository) Update(ctx context.Context, chat *entity.ChatThread) error {
	chat.UpdatedAt = time.Now()

	if err := r.commitChat(ctx, chat); err != nil {
		return errors.FromFirestore("update chat", err)
	}

	return nil
}

// AppendMessage commits the message and the thread summary in one batch so
// the roster can never show a preview the log does not contain, or the
// other way around. All server timestamps in the batch resolve to the same
// commit time, which keeps lastMessage.timestamp equal to the message's.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.ChatID = chatID

	batch := r.client.Batch()
	batch.Set(r.chatRef(chatID).Collection("messages").Doc(message.ID), message)
	batch.Update(r.chatRef(chatID), []firestore.Update{
		{Path: "lastMessage.text", Value: message.Preview()},
		{Path: "lastMessage.timestamp", Value: firestore.ServerTimestamp},
		{Path: "lastMessage.senderId", Value: message.SummarySenderID()},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})

	if _, err := batch.Commit(ctx); err != nil {
		logger.LogChatError(chatID, "append_message", err)
		return errors.FromFirestore("append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error) {
	query := r.chatRef(chatID).Collection("messages").OrderBy("createdAt", firestore.Asc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var messages []*entity.ChatMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.FromFirestore("list messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

// ListenMessages bridges a Firestore snapshot iterator onto a channel of
// full ordered logs. Each snapshot carries the whole current sequence, not
// a diff. The returned cancel tears down the listener; calling it more
// than once is harmless.
func (r *firestoreChatRepository) ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	query := r.chatRef(chatID).Collection("messages").OrderBy("createdAt", firestore.Asc)
	snapshots := query.Snapshots(ctx)

	out := make(chan []*entity.ChatMessage, 1)
	go func() {
		defer close(out)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.LogChatError(chatID, "listen_messages", err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.LogChatError(chatID, "listen_messages", err)
				return
			}

			messages := make([]*entity.ChatMessage, 0, len(docs))
			for _, doc := range docs {
				var message entity.ChatMessage
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping malformed message %s in chat %s: %v", doc.Ref.ID, chatID, err)
					continue
				}
				messages = append(messages, &message)
			}

			select {
			case out <- messages:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	docs, err := r.chatRef(chatID).Collection("messages").
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return errors.FromFirestore("query unread messages", err)
	}

	batch := r.client.Batch()
	pending := 0
	for _, doc := range docs {
		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID == readerID {
			continue
		}
		batch.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}})
		pending++
	}

	if pending == 0 {
		return nil
	}

	if _, err := batch.Commit(ctx); err != nil {
		return errors.FromFirestore("mark messages read", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, userID string, pageSize int, after time.Time) ([]*entity.ChatThread, error) {
	query := r.client.Collection("chats").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)
	if !after.IsZero() {
		query = query.StartAfter(after)
	}
	query = query.Limit(pageSize)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.FromFirestore("list chats", err)
	}

	var chats []*entity.ChatThread
	for _, doc := range docs {
		chat, err := chatFromDoc(doc)
		if err != nil {
			logger.Warn("Skipping malformed chat %s for user %s: %v", doc.Ref.ID, userID, err)
			continue
		}
		chats = append(chats, chat)
	}

	return chats, nil
}

func (r *firestoreChatRepository) ListenRoster(ctx context.Context, userID string, pageSize int) (<-chan []*entity.ChatThread, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	query := r.client.Collection("chats").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc).
		Limit(pageSize)
	snapshots := query.Snapshots(ctx)

	out := make(chan []*entity.ChatThread, 1)
	go func() {
		defer close(out)
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					logger.Error("Roster listener for user %s failed: %v", userID, err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Roster listener for user %s failed: %v", userID, err)
				return
			}

			chats := make([]*entity.ChatThread, 0, len(docs))
			for _, doc := range docs {
				chat, err := chatFromDoc(doc)
				if err != nil {
					continue
				}
				chats = append(chats, chat)
			}

			select {
			case out <- chats:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

func (r *firestoreChatRepository) ListFiles(ctx context.Context, chatID string) ([]*entity.ChatFile, error) {
	iter := r.chatRef(chatID).Collection("files").OrderBy("uploadedAt", firestore.Asc).Documents(ctx)

	var files []*entity.ChatFile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.FromFirestore("list files", err)
		}

		var file entity.ChatFile
		if err := doc.DataTo(&file); err != nil {
			return nil, errors.Internal("Failed to parse file data", err)
		}
		files = append(files, &file)
	}

	return files, nil
}

func (r *firestoreChatRepository) AddFile(ctx context.Context, chatID string, file *entity.ChatFile) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	file.UploadedAt = time.Now()

	_, err := r.chatRef(chatID).Collection("files").Doc(file.ID).Set(ctx, file)
	if err != nil {
		return errors.FromFirestore("add file", err)
	}

	return nil
}

// CommitAssignment writes the reassigned thread, its announcement message
// and the astrologer id on linked service-request and payment documents in
// one batch. All three converge together or not at all.
func (r *firestoreChatRepository) CommitAssignment(ctx context.Context, chat *entity.ChatThread, systemMessage *entity.ChatMessage) error {
	if systemMessage.ID == "" {
		systemMessage.ID = uuid.New().String()
	}
	systemMessage.ChatID = chat.ID
	chat.UpdatedAt = time.Now()

	batch := r.client.Batch()
	batch.Set(r.chatRef(chat.ID), chat)
	batch.Set(r.chatRef(chat.ID).Collection("messages").Doc(systemMessage.ID), systemMessage)
	updates := []firestore.Update{
		{Path: "lastMessage.text", Value: systemMessage.Preview()},
		{Path: "lastMessage.timestamp", Value: firestore.ServerTimestamp},
		{Path: "lastMessage.senderId", Value: systemMessage.SenderID},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if !chat.ExpiryTimestamp.IsZero() {
		updates = append(updates, firestore.Update{Path: "expiryTimestamp", Value: chat.ExpiryTimestamp})
	}
	batch.Update(r.chatRef(chat.ID), updates)

	if chat.ServiceRequestID != "" {
		batch.Update(r.client.Collection("serviceRequests").Doc(chat.ServiceRequestID), []firestore.Update{
			{Path: "astrologerId", Value: chat.AstrologerID},
		})
	}
	if chat.PaymentID != "" {
		batch.Update(r.client.Collection("payments").Doc(chat.PaymentID), []firestore.Update{
			{Path: "astrologerId", Value: chat.AstrologerID},
		})
	}

	if _, err := batch.Commit(ctx); err != nil {
		logger.LogChatError(chat.ID, "commit_assignment", err)
		return errors.FromFirestore("commit assignment", err)
	}

	return nil
}

// chatFromDoc decodes a thread document, normalizing the expiry at the
// read boundary: the canonical representation is a timestamp, but legacy
// documents stored raw milliseconds and are tolerated here.
func chatFromDoc(doc *firestore.DocumentSnapshot) (*entity.ChatThread, error) {
	var chat entity.ChatThread
	if err := doc.DataTo(&chat); err != nil {
		return nil, err
	}

	raw, err := doc.DataAt("expiryTimestamp")
	if err != nil {
		return &chat, nil
	}
	switch v := raw.(type) {
	case time.Time:
		chat.ExpiryTimestamp = v
	case int64:
		if v > 0 {
			chat.ExpiryTimestamp = time.UnixMilli(v)
		}
	case float64:
		if v > 0 {
			chat.ExpiryTimestamp = time.UnixMilli(int64(v))
		}
	}

	return &chat, nil
}
