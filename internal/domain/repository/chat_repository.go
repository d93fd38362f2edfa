package repository

import (
	"context"
	"time"

	"valluvarvaasal/internal/domain/entity"
)

// ChatRepository is the document-store boundary for chat threads, their
// message logs and files indexes.
//
// AppendMessage and CommitAssignment are atomic: no reader observes the
// message without the thread summary update (or a reassignment half
// applied across linked documents).
type ChatRepository interface {
	Create(ctx context.Context, chat *entity.ChatThread) error
	GetByID(ctx context.Context, id string) (*entity.ChatThread, error)
	Update(ctx context.Context, chat *entity.ChatThread) error

	// ListByParticipant returns the pageSize most recently updated threads
	// the user participates in, older than the cursor when one is given.
	ListByParticipant(ctx context.Context, userID string, pageSize int, after time.Time) ([]*entity.ChatThread, error)

	// ListenRoster delivers the full first page on every qualifying change
	// until the cancel function is called.
	ListenRoster(ctx context.Context, userID string, pageSize int) (<-chan []*entity.ChatThread, func(), error)

	// AppendMessage writes the message with a store-assigned timestamp and
	// updates the thread's lastMessage and updatedAt in the same commit.
	AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error

	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error)

	// ListenMessages delivers the full log, ascending by timestamp, on
	// every change until cancelled.
	ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error)

	// MarkMessagesRead flips read on every unread message not authored by
	// readerID. Idempotent.
	MarkMessagesRead(ctx context.Context, chatID, readerID string) error

	ListFiles(ctx context.Context, chatID string) ([]*entity.ChatFile, error)
	AddFile(ctx context.Context, chatID string, file *entity.ChatFile) error

	// CommitAssignment applies an astrologer (re)assignment: the updated
	// thread, the system message announcing it, and the astrologer id on
	// any linked service-request and payment documents, all in one commit.
	CommitAssignment(ctx context.Context, chat *entity.ChatThread, systemMessage *entity.ChatMessage) error
}
