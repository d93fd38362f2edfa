package usecase

import (
	"context"
	"time"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/logger"
)

type RosterUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewRosterUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *RosterUseCase {
	return &RosterUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// ChatSummary is one roster row: the thread plus the counterpart's
// directory details, resolved best-effort.
type ChatSummary struct {
	*entity.ChatThread
	EffectiveStatus string `json:"effective_status"`
	OtherUserName   string `json:"other_user_name,omitempty"`
	OtherUserPhoto  string `json:"other_user_photo,omitempty"`
}

// RosterPage is one page of a user's roster. Consumers holding a live
// first page plus fetched older pages merge by thread id: a thread
// resurfacing on the first page replaces its older copy instead of
// duplicating it.
type RosterPage struct {
	Chats   []*ChatSummary `json:"chats"`
	Cursor  time.Time      `json:"cursor,omitempty"`
	HasMore bool           `json:"hasMore"`
}

// FetchNextPage is the one-shot continuation of the roster. hasMore is the
// page-full heuristic, not an exact count.
func (uc *RosterUseCase) FetchNextPage(ctx context.Context, userID string, cursor time.Time, pageSize int) (*RosterPage, error) {
	chats, err := uc.chatRepo.ListByParticipant(ctx, userID, pageSize, cursor)
	if err != nil {
		return nil, err
	}
	return uc.buildPage(ctx, userID, chats, pageSize), nil
}

// SubscribeFirstPage opens a live view of the pageSize most recent threads.
// The full first page is re-delivered on every qualifying change. The
// caller owns the cancel.
func (uc *RosterUseCase) SubscribeFirstPage(ctx context.Context, userID string, pageSize int) (<-chan *RosterPage, func(), error) {
	threads, cancel, err := uc.chatRepo.ListenRoster(ctx, userID, pageSize)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan *RosterPage, 1)
	go func() {
		defer close(out)
		for chats := range threads {
			out <- uc.buildPage(ctx, userID, chats, pageSize)
		}
	}()

	return out, cancel, nil
}

func (uc *RosterUseCase) buildPage(ctx context.Context, userID string, chats []*entity.ChatThread, pageSize int) *RosterPage {
	now := time.Now()
	resolved := make(map[string]*entity.User)

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := &ChatSummary{
			ChatThread:      chat,
			EffectiveStatus: chat.EffectiveStatus(now),
		}

		// Directory lookup failures leave the display fields empty rather
		// than failing the page.
		if otherID := chat.OtherParticipant(userID); otherID != "" {
			user, ok := resolved[otherID]
			if !ok {
				var err error
				user, err = uc.userRepo.GetByID(ctx, otherID)
				if err != nil {
					logger.Debug("Roster lookup for %s failed: %v", otherID, err)
					user = nil
				}
				resolved[otherID] = user
			}
			if user != nil {
				summary.OtherUserName = user.DisplayName
				summary.OtherUserPhoto = user.PhotoURL
			}
		}

		summaries = append(summaries, summary)
	}

	page := &RosterPage{
		Chats:   summaries,
		HasMore: len(chats) == pageSize,
	}
	if len(chats) > 0 {
		page.Cursor = chats[len(chats)-1].UpdatedAt
	}
	return page
}
