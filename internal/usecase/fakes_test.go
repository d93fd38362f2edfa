package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/pkg/errors"
)

// fakeChatRepo keeps threads, logs and file indexes in memory, mirroring
// the store's commit behavior: an append updates the thread summary in the
// same step, and a commitAssignment also stamps the astrologer onto linked
// documents.
type fakeChatRepo struct {
	mu    sync.Mutex
	now   time.Time
	chats map[string]*entity.ChatThread
	logs  map[string][]*entity.ChatMessage
	files map[string][]*entity.ChatFile

	serviceRequestAstrologer map[string]string
	paymentAstrologer        map[string]string

	seq int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		now:                      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		chats:                    make(map[string]*entity.ChatThread),
		logs:                     make(map[string][]*entity.ChatMessage),
		files:                    make(map[string][]*entity.ChatFile),
		serviceRequestAstrologer: make(map[string]string),
		paymentAstrologer:        make(map[string]string),
	}
}

func (r *fakeChatRepo) tick() time.Time {
	r.now = r.now.Add(time.Second)
	return r.now
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.ChatThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chat.Status == "" {
		chat.Status = entity.StatusActive
	}
	now := r.tick()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.ChatThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return chat, nil
}

func (r *fakeChatRepo) Update(ctx context.Context, chat *entity.ChatThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[chat.ID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	chat.UpdatedAt = r.tick()
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) ListByParticipant(ctx context.Context, userID string, pageSize int, after time.Time) ([]*entity.ChatThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.ChatThread
	for _, chat := range r.chats {
		if !chat.HasParticipant(userID) {
			continue
		}
		if !after.IsZero() && !chat.UpdatedAt.Before(after) {
			continue
		}
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func (r *fakeChatRepo) ListenRoster(ctx context.Context, userID string, pageSize int) (<-chan []*entity.ChatThread, func(), error) {
	threads, _ := r.ListByParticipant(ctx, userID, pageSize, time.Time{})
	ch := make(chan []*entity.ChatThread, 1)
	ch <- threads
	close(ch)
	return ch, func() {}, nil
}

func (r *fakeChatRepo) appendLocked(chatID string, message *entity.ChatMessage) error {
	chat, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}

	r.seq++
	message.ID = fmt.Sprintf("msg-%d", r.seq)
	message.ChatID = chatID
	message.CreatedAt = r.tick()
	r.logs[chatID] = append(r.logs[chatID], message)

	chat.LastMessage = &entity.LastMessage{
		Text:      message.Preview(),
		Timestamp: message.CreatedAt,
		SenderID:  message.SummarySenderID(),
	}
	chat.UpdatedAt = message.CreatedAt
	return nil
}

func (r *fakeChatRepo) AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(chatID, message)
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[chatID]
	if offset >= len(log) {
		return nil, nil
	}
	log = log[offset:]
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	return log, nil
}

func (r *fakeChatRepo) ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error) {
	messages, _ := r.ListMessages(ctx, chatID, 0, 0)
	ch := make(chan []*entity.ChatMessage, 1)
	ch <- messages
	close(ch)
	return ch, func() {}, nil
}

func (r *fakeChatRepo) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range r.logs[chatID] {
		if message.SenderID != readerID {
			message.Read = true
		}
	}
	return nil
}

func (r *fakeChatRepo) ListFiles(ctx context.Context, chatID string) ([]*entity.ChatFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.ChatFile(nil), r.files[chatID]...), nil
}

func (r *fakeChatRepo) AddFile(ctx context.Context, chatID string, file *entity.ChatFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	file.ID = fmt.Sprintf("file-%d", r.seq)
	file.UploadedAt = r.tick()
	r.files[chatID] = append(r.files[chatID], file)
	return nil
}

func (r *fakeChatRepo) CommitAssignment(ctx context.Context, chat *entity.ChatThread, systemMessage *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[chat.ID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	r.chats[chat.ID] = chat
	if err := r.appendLocked(chat.ID, systemMessage); err != nil {
		return err
	}
	if chat.ServiceRequestID != "" {
		r.serviceRequestAstrologer[chat.ServiceRequestID] = chat.AstrologerID
	}
	if chat.PaymentID != "" {
		r.paymentAstrologer[chat.PaymentID] = chat.AstrologerID
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	var out []*entity.User
	for _, user := range r.users {
		for _, have := range user.Roles {
			if have == role {
				out = append(out, user)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*entity.Notification
	seen    []string
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, notification)
	return nil
}

func (r *fakeNotificationRepo) ListUnseen(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Notification
	for _, n := range r.created {
		if n.UserID == userID && !n.Seen {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkSeen(ctx context.Context, userID, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = append(r.seen, userID+"/"+chatID)
	for _, n := range r.created {
		if n.UserID == userID && n.ChatID == chatID {
			n.Seen = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) forUser(userID string) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakePresence struct {
	online map[string]bool
}

func (p *fakePresence) IsOnline(ctx context.Context, userID string) bool {
	return p.online[userID]
}

type fakeUploader struct {
	uploaded []string
}

func (u *fakeUploader) Upload(ctx context.Context, objectName, contentType string, content io.Reader) (string, error) {
	if content != nil {
		io.Copy(io.Discard, content)
	}
	u.uploaded = append(u.uploaded, objectName)
	return "https://storage.test/" + objectName, nil
}

type fakeAdminChatRepo struct {
	mu   sync.Mutex
	now  time.Time
	seq  int
	all  map[string]*entity.AdminChat
	logs map[string][]*entity.ChatMessage
}

func newFakeAdminChatRepo() *fakeAdminChatRepo {
	return &fakeAdminChatRepo{
		now:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		all:  make(map[string]*entity.AdminChat),
		logs: make(map[string][]*entity.ChatMessage),
	}
}

func (r *fakeAdminChatRepo) tick() time.Time {
	r.now = r.now.Add(time.Second)
	return r.now
}

func (r *fakeAdminChatRepo) GetByID(ctx context.Context, id string) (*entity.AdminChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.all[id]
	if !ok {
		return nil, errors.NotFound("Admin chat", nil)
	}
	return channel, nil
}

func (r *fakeAdminChatRepo) Update(ctx context.Context, chat *entity.AdminChat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.all[chat.ID]; !ok {
		return errors.NotFound("Admin chat", nil)
	}
	chat.UpdatedAt = r.tick()
	r.all[chat.ID] = chat
	return nil
}

func (r *fakeAdminChatRepo) CreateIfNoneActive(ctx context.Context, chat *entity.AdminChat) (*entity.AdminChat, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.all {
		if existing.MainChatID == chat.MainChatID && !existing.IsResolved() {
			return existing, false, nil
		}
	}

	r.seq++
	chat.ID = fmt.Sprintf("admin-chat-%d", r.seq)
	chat.Status = entity.AdminChatStatusActive
	now := r.tick()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.all[chat.ID] = chat
	return chat, true, nil
}

func (r *fakeAdminChatRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.AdminChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.AdminChat
	for _, channel := range r.all {
		if channel.ClientID == clientID {
			out = append(out, channel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAdminChatRepo) AppendMessage(ctx context.Context, chatID string, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.all[chatID]
	if !ok {
		return errors.NotFound("Admin chat", nil)
	}

	r.seq++
	message.ID = fmt.Sprintf("admin-msg-%d", r.seq)
	message.ChatID = chatID
	message.CreatedAt = r.tick()
	r.logs[chatID] = append(r.logs[chatID], message)

	channel.LastMessage = &entity.LastMessage{
		Text:      message.Preview(),
		Timestamp: message.CreatedAt,
		SenderID:  message.SummarySenderID(),
	}
	channel.UpdatedAt = message.CreatedAt
	return nil
}

func (r *fakeAdminChatRepo) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[chatID]
	if offset >= len(log) {
		return nil, nil
	}
	log = log[offset:]
	if limit > 0 && len(log) > limit {
		log = log[:limit]
	}
	return log, nil
}

func (r *fakeAdminChatRepo) ListenMessages(ctx context.Context, chatID string) (<-chan []*entity.ChatMessage, func(), error) {
	messages, _ := r.ListMessages(ctx, chatID, 0, 0)
	ch := make(chan []*entity.ChatMessage, 1)
	ch <- messages
	close(ch)
	return ch, func() {}, nil
}

func (r *fakeAdminChatRepo) MarkMessagesRead(ctx context.Context, chatID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range r.logs[chatID] {
		if message.SenderID != readerID {
			message.Read = true
		}
	}
	return nil
}
