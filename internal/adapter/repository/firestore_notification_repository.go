package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()

	_, err := r.client.Collection("notifications").Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.FromFirestore("create notification", err)
	}

	return nil
}

func (r *firestoreNotificationRepository) ListUnseen(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	query := r.client.Collection("notifications").
		Where("userId", "==", userID).
		Where("seen", "==", false).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.FromFirestore("list notifications", err)
	}

	var notifications []*entity.Notification
	for _, doc := range docs {
		var notification entity.Notification
		if err := doc.DataTo(&notification); err != nil {
			continue
		}
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}

func (r *firestoreNotificationRepository) MarkSeen(ctx context.Context, userID, chatID string) error {
	docs, err := r.client.Collection("notifications").
		Where("userId", "==", userID).
		Where("chatId", "==", chatID).
		Where("seen", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return errors.FromFirestore("query notifications", err)
	}
	if len(docs) == 0 {
		return nil
	}

	batch := r.client.Batch()
	for _, doc := range docs {
		batch.Update(doc.Ref, []firestore.Update{{Path: "seen", Value: true}})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return errors.FromFirestore("mark notifications seen", err)
	}

	return nil
}
