package usecase

import (
	"context"
	"fmt"
	"time"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/internal/domain/repository"
	"valluvarvaasal/pkg/errors"
)

// LifecycleUseCase carries the thread state operations: assignment,
// expiry extension, completion and feedback.
type LifecycleUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

func NewLifecycleUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *LifecycleUseCase {
	return &LifecycleUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// AssignAstrologer assigns or reassigns the astrologer on a thread. A
// reassignment removes the previous astrologer from the participant set
// and display maps; assignment history is append-only either way. The
// thread, the announcement message and any linked service-request and
// payment documents are committed together.
func (uc *LifecycleUseCase) AssignAstrologer(ctx context.Context, chatID, newAstrologerID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.AstrologerID == newAstrologerID {
		return chat, nil
	}

	astrologer, err := uc.userRepo.GetByID(ctx, newAstrologerID)
	if err != nil {
		return nil, errors.NotFound("Astrologer", err)
	}
	if !hasRole(astrologer, entity.RoleAstrologer) {
		return nil, errors.BadRequest("User is not an astrologer", nil)
	}

	previousID := chat.AstrologerID
	reassigned := previousID != ""

	if reassigned {
		chat.Participants = removeString(chat.Participants, previousID)
		delete(chat.ParticipantNames, previousID)
		delete(chat.ParticipantAvatars, previousID)
	}

	chat.AstrologerID = newAstrologerID
	if !chat.HasParticipant(newAstrologerID) {
		chat.Participants = append(chat.Participants, newAstrologerID)
	}
	if chat.ParticipantNames == nil {
		chat.ParticipantNames = make(map[string]string)
	}
	if chat.ParticipantAvatars == nil {
		chat.ParticipantAvatars = make(map[string]string)
	}
	chat.ParticipantNames[newAstrologerID] = astrologer.DisplayName
	chat.ParticipantAvatars[newAstrologerID] = astrologer.PhotoURL

	chat.AssignmentHistory = append(chat.AssignmentHistory, entity.AssignmentRecord{
		AssigneeID: newAstrologerID,
		AssignedBy: actor.UID,
		AssignedAt: time.Now(),
	})

	text := fmt.Sprintf("Your consultation has been assigned to %s.", astrologer.DisplayName)
	if reassigned {
		text = fmt.Sprintf("Your consultation has been reassigned to %s.", astrologer.DisplayName)
	}
	systemMessage := &entity.ChatMessage{
		SenderID: entity.SystemSenderID,
		Type:     entity.MessageTypeSystem,
		Text:     text,
	}

	if err := uc.chatRepo.CommitAssignment(ctx, chat, systemMessage); err != nil {
		return nil, err
	}

	return chat, nil
}

// AssignSupportUser sets the support agent. Unlike astrologer
// reassignment nothing is removed; the field is single-valued but its
// history is cumulative.
func (uc *LifecycleUseCase) AssignSupportUser(ctx context.Context, chatID, supportUserID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.GetByID(ctx, supportUserID); err != nil {
		return nil, errors.NotFound("Support user", err)
	}

	chat.SupportUserID = supportUserID
	chat.SupportAssignmentHistory = append(chat.SupportAssignmentHistory, entity.AssignmentRecord{
		AssigneeID: supportUserID,
		AssignedBy: actor.UID,
		AssignedAt: time.Now(),
	})

	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (uc *LifecycleUseCase) AssignAdmin(ctx context.Context, chatID, adminID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.GetByID(ctx, adminID); err != nil {
		return nil, errors.NotFound("Admin", err)
	}

	chat.AdminID = adminID
	chat.AdminAssignmentHistory = append(chat.AdminAssignmentHistory, entity.AssignmentRecord{
		AssigneeID: adminID,
		AssignedBy: actor.UID,
		AssignedAt: time.Now(),
	})

	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ExtendExpiry moves the thread's expiry forward by the given hours from
// its current effective value and records the previous value.
func (uc *LifecycleUseCase) ExtendExpiry(ctx context.Context, chatID string, hours int, actor entity.Identity) (*entity.ChatThread, error) {
	if hours <= 0 {
		return nil, errors.BadRequest("Extension hours must be positive", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return nil, errors.BadRequest("Completed consultations cannot be extended", nil)
	}

	previous := chat.EffectiveExpiry()
	next := previous.Add(time.Duration(hours) * time.Hour)

	chat.ExpiryTimestamp = next
	chat.ExtensionHistory = append(chat.ExtensionHistory, entity.ExtensionRecord{
		PreviousExpiry: previous,
		NewExpiry:      next,
		Hours:          hours,
		ExtendedBy:     actor.UID,
		ExtendedAt:     time.Now(),
	})

	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// MarkCompleted is the terminal transition. The log stays readable; new
// messages are refused from here on.
func (uc *LifecycleUseCase) MarkCompleted(ctx context.Context, chatID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status == entity.StatusCompleted {
		return chat, nil
	}

	chat.Status = entity.StatusCompleted
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	systemMessage := &entity.ChatMessage{
		SenderID: entity.SystemSenderID,
		Type:     entity.MessageTypeSystem,
		Text:     "This consultation has been marked as completed.",
	}
	if err := uc.chatRepo.AppendMessage(ctx, chatID, systemMessage); err != nil {
		return nil, err
	}

	return chat, nil
}

// SubmitFeedback stores the client's rating once the consultation has
// ended. Resubmission overwrites the previous record.
func (uc *LifecycleUseCase) SubmitFeedback(ctx context.Context, chatID string, client entity.Identity, rating int, comment string) (*entity.ChatThread, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.BadRequest("Rating must be between 1 and 5", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.ClientID != client.UID {
		return nil, errors.Forbidden("Only the client can submit feedback", nil)
	}
	if chat.EffectiveStatus(time.Now()) == entity.StatusActive {
		return nil, errors.BadRequest("Feedback can be submitted after the consultation ends", nil)
	}

	visible := false
	if chat.Feedback != nil {
		visible = chat.Feedback.VisibleToAstrologer
	}
	chat.Feedback = &entity.ChatFeedback{
		Rating:              rating,
		Comment:             comment,
		SubmittedAt:         time.Now(),
		VisibleToAstrologer: visible,
	}

	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (uc *LifecycleUseCase) ToggleFeedbackVisibility(ctx context.Context, chatID string, actor entity.Identity) (*entity.ChatThread, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Feedback == nil {
		return nil, errors.NotFound("Feedback", nil)
	}

	chat.Feedback.VisibleToAstrologer = !chat.Feedback.VisibleToAstrologer
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func hasRole(user *entity.User, role string) bool {
	for _, r := range user.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
