package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valluvarvaasal/internal/domain/entity"
	"valluvarvaasal/pkg/errors"
)

func newTestAdminChatUseCase(chatRepo *fakeChatRepo) (*AdminChatUseCase, *fakeAdminChatRepo, *fakeNotificationRepo) {
	adminRepo := newFakeAdminChatRepo()
	notifications := &fakeNotificationRepo{}
	presence := &fakePresence{online: map[string]bool{}}
	userRepo := newFakeUserRepo(
		&entity.User{ID: "admin-1", DisplayName: "Boss", Roles: []string{entity.RoleAdmin}},
		&entity.User{ID: "admin-2", DisplayName: "Deputy", Roles: []string{entity.RoleAdmin}},
		&entity.User{ID: "client-1", DisplayName: "Kavya", Roles: []string{entity.RoleClient}},
	)
	return NewAdminChatUseCase(adminRepo, chatRepo, userRepo, presence, notifications), adminRepo, notifications
}

func TestOpenCreatesChannelWithSeedAndCrossReference(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, adminRepo, _ := newTestAdminChatUseCase(chatRepo)
	ctx := context.Background()

	channel, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, mainChat.ID, channel.MainChatID)
	assert.Equal(t, "client-1", channel.ClientID)
	assert.Equal(t, "admin-2", channel.AdminID)
	assert.Equal(t, entity.AdminChatStatusActive, channel.Status)

	// The new channel is seeded with a system message.
	seeded, _ := adminRepo.ListMessages(ctx, channel.ID, 0, 0)
	require.Len(t, seeded, 1)
	assert.Equal(t, entity.SystemSenderID, seeded[0].SenderID)

	// The main thread's log cross-references the channel id.
	mainLog, _ := chatRepo.ListMessages(ctx, mainChat.ID, 0, 0)
	require.Len(t, mainLog, 1)
	assert.Contains(t, mainLog[0].Text, fmt.Sprintf("[admin-chat:%s]", channel.ID))
}

func TestOpenReturnsExistingActiveChannel(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, adminRepo, _ := newTestAdminChatUseCase(chatRepo)
	ctx := context.Background()

	first, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-1")
	require.NoError(t, err)

	second, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "admin-1", second.AdminID, "existing channel keeps its admin")

	// No extra seed or cross-reference messages.
	seeded, _ := adminRepo.ListMessages(ctx, first.ID, 0, 0)
	assert.Len(t, seeded, 1)
	mainLog, _ := chatRepo.ListMessages(ctx, mainChat.ID, 0, 0)
	assert.Len(t, mainLog, 1)
}

func TestOpenAutoAssignsAdmin(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, _, _ := newTestAdminChatUseCase(chatRepo)

	channel, err := uc.Open(context.Background(), mainChat.ID, clientIdentity, "")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", channel.AdminID)
}

func TestOpenForbiddenForUnrelatedUser(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, _, _ := newTestAdminChatUseCase(chatRepo)

	outsider := entity.Identity{UID: "other-client", Roles: []string{entity.RoleClient}}
	_, err := uc.Open(context.Background(), mainChat.ID, outsider, "")
	assert.True(t, errors.Is(err, "PERMISSION_DENIED"))
}

func TestResolveIsOneWayAndBlocksNewMessages(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, _, _ := newTestAdminChatUseCase(chatRepo)
	ctx := context.Background()

	channel, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-1")
	require.NoError(t, err)

	_, err = uc.SendText(ctx, channel.ID, clientIdentity, "my payment failed")
	require.NoError(t, err)

	resolved, err := uc.Resolve(ctx, channel.ID, adminIdentity)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved())

	// Resolving again is a harmless no-op.
	again, err := uc.Resolve(ctx, channel.ID, adminIdentity)
	require.NoError(t, err)
	assert.True(t, again.IsResolved())

	_, err = uc.SendText(ctx, channel.ID, clientIdentity, "one more thing")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	// A fresh concern opens a fresh channel for the same main thread.
	fresh, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-1")
	require.NoError(t, err)
	assert.NotEqual(t, channel.ID, fresh.ID)
}

func TestAdminChatSendTextNotifiesOfflineCounterpart(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, _, notifications := newTestAdminChatUseCase(chatRepo)
	ctx := context.Background()

	channel, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-1")
	require.NoError(t, err)

	_, err = uc.SendText(ctx, channel.ID, clientIdentity, "please check my refund")
	require.NoError(t, err)

	assert.Len(t, notifications.forUser("admin-1"), 1)
	assert.Empty(t, notifications.forUser("client-1"))
}

func TestAdminChatAccessControl(t *testing.T) {
	chatRepo := newFakeChatRepo()
	mainChat := seedChat(t, chatRepo, entity.ServicePrediction)
	uc, _, _ := newTestAdminChatUseCase(chatRepo)
	ctx := context.Background()

	channel, err := uc.Open(ctx, mainChat.ID, clientIdentity, "admin-1")
	require.NoError(t, err)

	// The assigned astrologer of the main thread has no standing here.
	_, err = uc.Get(ctx, channel.ID, astroIdentity)
	assert.True(t, errors.Is(err, "PERMISSION_DENIED"))

	_, err = uc.Get(ctx, channel.ID, clientIdentity)
	assert.NoError(t, err)

	// Any admin can step in, not only the assigned one.
	other := entity.Identity{UID: "admin-2", Roles: []string{entity.RoleAdmin}}
	_, err = uc.Get(ctx, channel.ID, other)
	assert.NoError(t, err)
}
