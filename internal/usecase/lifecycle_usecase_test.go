package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/pkg/errors"
)

func newTestLifecycleUseCase(repo *fakeChatRepo) *LifecycleUseCase {
	userRepo := newFakeUserRepo(
		&entity.User{ID: "client-1", DisplayName: "Kavya", Roles: []string{entity.RoleClient}},
		&entity.User{ID: "astro-1", DisplayName: "Guruji", Roles: []string{entity.RoleAstrologer}},
		&entity.User{ID: "astro-2", DisplayName: "Periyavar", PhotoURL: "https://p/2.jpg", Roles: []string{entity.RoleAstrologer}},
		&entity.User{ID: "support-1", DisplayName: "Desk", Roles: []string{entity.RoleSupport}},
		&entity.User{ID: "admin-1", DisplayName: "Boss", Roles: []string{entity.RoleAdmin}},
	)
	return NewLifecycleUseCase(repo, userRepo)
}

func TestAssignAstrologerFirstAssignment(t *testing.T) {
	repo := newFakeChatRepo()
	chat := &entity.ChatThread{
		ID:               "chat-1",
		Participants:     []string{"client-1"},
		ClientID:         "client-1",
		ServiceType:      entity.ServicePrediction,
		ServiceRequestID: "sr-1",
		PaymentID:        "pay-1",
	}
	require.NoError(t, repo.Create(context.Background(), chat))
	uc := newTestLifecycleUseCase(repo)

	updated, err := uc.AssignAstrologer(context.Background(), chat.ID, "astro-1", adminIdentity)
	require.NoError(t, err)

	assert.Equal(t, "astro-1", updated.AstrologerID)
	assert.Contains(t, updated.Participants, "astro-1")
	assert.Equal(t, "Guruji", updated.ParticipantNames["astro-1"])
	require.Len(t, updated.AssignmentHistory, 1)
	assert.Equal(t, "admin-1", updated.AssignmentHistory[0].AssignedBy)

	messages, _ := repo.ListMessages(context.Background(), chat.ID, 0, 0)
	require.Len(t, messages, 1)
	assert.Equal(t, entity.SystemSenderID, messages[0].SenderID)
	assert.Equal(t, entity.MessageTypeSystem, messages[0].Type)
	assert.Equal(t, "Your consultation has been assigned to Guruji.", messages[0].Text)

	// Linked documents pick up the astrologer in the same commit.
	assert.Equal(t, "astro-1", repo.serviceRequestAstrologer["sr-1"])
	assert.Equal(t, "astro-1", repo.paymentAstrologer["pay-1"])
}

func TestReassignAstrologerRemovesPrevious(t *testing.T) {
	repo := newFakeChatRepo()
	chat := &entity.ChatThread{
		ID:                 "chat-1",
		Participants:       []string{"client-1", "astro-1"},
		ClientID:           "client-1",
		AstrologerID:       "astro-1",
		ServiceType:        entity.ServicePrediction,
		ParticipantNames:   map[string]string{"client-1": "Kavya", "astro-1": "Guruji"},
		ParticipantAvatars: map[string]string{"astro-1": "https://p/1.jpg"},
	}
	require.NoError(t, repo.Create(context.Background(), chat))
	uc := newTestLifecycleUseCase(repo)

	updated, err := uc.AssignAstrologer(context.Background(), chat.ID, "astro-2", adminIdentity)
	require.NoError(t, err)

	assert.Equal(t, "astro-2", updated.AstrologerID)
	assert.NotContains(t, updated.Participants, "astro-1")
	assert.Contains(t, updated.Participants, "astro-2")
	assert.Contains(t, updated.Participants, "client-1")
	assert.NotContains(t, updated.ParticipantNames, "astro-1")
	assert.NotContains(t, updated.ParticipantAvatars, "astro-1")
	assert.Equal(t, "Periyavar", updated.ParticipantNames["astro-2"])
	assert.Equal(t, "https://p/2.jpg", updated.ParticipantAvatars["astro-2"])

	messages, _ := repo.ListMessages(context.Background(), chat.ID, 0, 0)
	require.Len(t, messages, 1)
	assert.Equal(t, "Your consultation has been reassigned to Periyavar.", messages[0].Text)
}

func TestAssignAstrologerSameAssigneeIsNoop(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)

	updated, err := uc.AssignAstrologer(context.Background(), chat.ID, "astro-1", adminIdentity)
	require.NoError(t, err)
	assert.Empty(t, updated.AssignmentHistory)

	messages, _ := repo.ListMessages(context.Background(), chat.ID, 0, 0)
	assert.Empty(t, messages)
}

func TestAssignAstrologerRejectsNonAstrologer(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)

	_, err := uc.AssignAstrologer(context.Background(), chat.ID, "support-1", adminIdentity)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.AssignAstrologer(context.Background(), chat.ID, "nobody", adminIdentity)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestAssignSupportUserKeepsParticipants(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)

	updated, err := uc.AssignSupportUser(context.Background(), chat.ID, "support-1", adminIdentity)
	require.NoError(t, err)
	assert.Equal(t, "support-1", updated.SupportUserID)
	assert.NotContains(t, updated.Participants, "support-1")
	require.Len(t, updated.SupportAssignmentHistory, 1)
}

func TestExtendExpiryRecordsHistory(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	chat.PlanDurationHours = 24
	uc := newTestLifecycleUseCase(repo)

	base := chat.CreatedAt.Add(24 * time.Hour)

	updated, err := uc.ExtendExpiry(context.Background(), chat.ID, 12, supportIdentity)
	require.NoError(t, err)
	assert.Equal(t, base.Add(12*time.Hour), updated.ExpiryTimestamp)
	require.Len(t, updated.ExtensionHistory, 1)
	assert.Equal(t, base, updated.ExtensionHistory[0].PreviousExpiry)
	assert.Equal(t, 12, updated.ExtensionHistory[0].Hours)

	// A second extension builds on the stored absolute value.
	updated, err = uc.ExtendExpiry(context.Background(), chat.ID, 6, supportIdentity)
	require.NoError(t, err)
	assert.Equal(t, base.Add(18*time.Hour), updated.ExpiryTimestamp)
	require.Len(t, updated.ExtensionHistory, 2)
	assert.Equal(t, base.Add(12*time.Hour), updated.ExtensionHistory[1].PreviousExpiry)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)

	updated, err := uc.MarkCompleted(context.Background(), chat.ID, supportIdentity)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, updated.Status)

	messages, _ := repo.ListMessages(context.Background(), chat.ID, 0, 0)
	require.Len(t, messages, 1)
	assert.Equal(t, "This consultation has been marked as completed.", messages[0].Text)

	_, err = uc.MarkCompleted(context.Background(), chat.ID, supportIdentity)
	require.NoError(t, err)
	messages, _ = repo.ListMessages(context.Background(), chat.ID, 0, 0)
	assert.Len(t, messages, 1, "repeat completion appends nothing")

	_, err = uc.ExtendExpiry(context.Background(), chat.ID, 4, supportIdentity)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"), "completed consultations cannot be extended")
}

func TestSubmitFeedback(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)
	ctx := context.Background()

	_, err := uc.SubmitFeedback(ctx, chat.ID, clientIdentity, 6, "")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SubmitFeedback(ctx, chat.ID, clientIdentity, 4, "good")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"), "no feedback while still active")

	_, err = uc.MarkCompleted(ctx, chat.ID, supportIdentity)
	require.NoError(t, err)

	_, err = uc.SubmitFeedback(ctx, chat.ID, astroIdentity, 4, "nice client")
	assert.True(t, errors.Is(err, "PERMISSION_DENIED"))

	updated, err := uc.SubmitFeedback(ctx, chat.ID, clientIdentity, 4, "good guidance")
	require.NoError(t, err)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, 4, updated.Feedback.Rating)
	assert.False(t, updated.Feedback.VisibleToAstrologer)

	// Visibility toggled by an admin survives a resubmission.
	updated, err = uc.ToggleFeedbackVisibility(ctx, chat.ID, adminIdentity)
	require.NoError(t, err)
	assert.True(t, updated.Feedback.VisibleToAstrologer)

	updated, err = uc.SubmitFeedback(ctx, chat.ID, clientIdentity, 5, "even better")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Feedback.Rating)
	assert.Equal(t, "even better", updated.Feedback.Comment)
	assert.True(t, updated.Feedback.VisibleToAstrologer)
}

func TestToggleFeedbackVisibilityWithoutFeedback(t *testing.T) {
	repo := newFakeChatRepo()
	chat := seedChat(t, repo, entity.ServicePrediction)
	uc := newTestLifecycleUseCase(repo)

	_, err := uc.ToggleFeedbackVisibility(context.Background(), chat.ID, adminIdentity)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
