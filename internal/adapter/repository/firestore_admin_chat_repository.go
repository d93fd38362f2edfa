package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
	"valluvarvaasal/pkg/logger"
)

type firestoreAdminChatRepository struct {
	client *firestore.Client
}

func NewFirestoreAdminChatRepository(client *firestore.Client) repository.AdminChatRepository {
	return &firestoreAdminChatRepository{
		client: client,
	}
}

func (r *firestoreAdminChatRepository) chatRef(id string) *firestore.DocumentRef {
	return r.client.Collection("adminChats").Doc(id)
}

func (r *firestoreAdminChatRepository) GetByID(ctx context.Context, id string) (*entity.AdminChat, error) {
	doc, err := r.chatRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Admin chat", nil)
		}
		return nil, errors.FromFirestore("get admin chat", err)
	}

	var chat entity.AdminChat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse admin chat data", err)
	}

	return &chat, nil
}

func (r *firestoreAdminChatRepository) Update(ctx context.Context, chat *entity.AdminChat) error {
	chat.UpdatedAt = time.Now()

	_, err := r.chatRef(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.FromFirestore("update admin chat", err)
	}

	return nil
}

// CreateIfNoneActive runs the existence check and the create inside one
// transaction so two concurrent opens for the same main thread cannot both
// create a channel.
func (r *firestoreAdminChatRepository) CreateIfNoneActive(ctx context.Context, chat *entity.AdminChat) (*entity.AdminChat, bool, error) {
	var existing *entity.AdminChat
	created := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := r.client.Collection("adminChats").
			Where("mainChatId", "==", chat.MainChatID).
			Where("status", "==", entity.AdminChatStatusActive).
			Limit(1)

		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			var found entity.AdminChat
			if err := docs[0].DataTo(&found); err != nil {
				return err
			}
			existing = &found
			created = false
			return nil
		}

		if chat.ID == "" {
			chat.ID = uuid.New().String()
		}
		chat.Status = entity.AdminChatStatusActive
		now := time.Now()
		chat.CreatedAt = now
		chat.UpdatedAt = now

		created = true
		return tx.Set(r.chatRef(chat.ID), chat)
	})
	if err != nil {
		return nil, false, errors.FromFirestore("open admin chat", err)
	}

	if created {
		return chat, true, nil
	}
	return existing, false, nil
}

func (r *firestoreAdminChatRepository) ListByClient(ctx context.Context, clientID string) ([]*entity.AdminChat, error) {
	docs, err := r.client.Collection("adminChats").
		Where("clientId", "==", clientID).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.FromFirestore("list admin chats", err)
	}

	var chats []*entity.AdminChat
	for _, doc := range docs {
		var chat entity.AdminChat
		if err := doc.DataTo(&chat); err != nil {
			continue
		}
		chats = append(chats, &chat)
	}

	return chats, nil
}

func (r *firestoreAdminChatRepository) AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error {
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
		logger.LogChatError(chatID, "append_admin_message", err)
		return errors.FromFirestore("append admin chat message", err)
	}

	return nil
}

func (r *firestoreAdminChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error) {
	query := r.chatRef(chatID).Collection("messages").OrderBy("createdAt", firestore.Asc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.FromFirestore("list admin chat messages", err)
	}

	var messages []*entity.ChatMessage
	for _, doc := range docs {
		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreAdminChatRepository) ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error) {
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
					logger.LogChatError(chatID, "listen_admin_messages", err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.LogChatError(chatID, "listen_admin_messages", err)
				return
			}

			messages := make([]*entity.ChatMessage, 0, len(docs))
			for _, doc := range docs {
				var message entity.ChatMessage
				if err := doc.DataTo(&message); err != nil {
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

func (r *firestoreAdminChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	docs, err := r.chatRef(chatID).Collection("messages").
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return errors.FromFirestore("query unread admin chat messages", err)
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
		return errors.FromFirestore("mark admin chat messages read", err)
	}

	return nil
}
