package admin_services_test

import (
	"context"
	"testing"

	"github.com/iyunix/go-gemchat/internal/database/databasetest"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services/admin_services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminViews(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)
	users := repository.NewGormUserRepository(db)
	conversations := repository.NewConversationRepository(db)
	messages := repository.NewMessageRepository(db)
	svc := admin_services.NewAdminService(users, conversations, messages)

	alice, err := users.Create(ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	_, err = users.Create(ctx, &domain.User{Username: "bob"})
	require.NoError(t, err)

	conv := &domain.Conversation{UserID: alice.ID, Title: "Recipes"}
	require.NoError(t, conversations.CreateWithMessage(ctx, conv, &domain.Message{Role: domain.RoleUser, Content: "pasta?"}))
	_, err = messages.Create(ctx, &domain.Message{ConversationID: conv.ID, Role: domain.RoleModel, Content: "**boil** water"})
	require.NoError(t, err)

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin_services.DashboardStats{Users: 2, Conversations: 1, Messages: 2}, *stats)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].Username)

	owner, convs, err := svc.UserConversations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner.Username)
	require.Len(t, convs, 1)
	assert.Equal(t, "Recipes", convs[0].Title)

	transcript, err := svc.ConversationMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", transcript.Owner.Username)
	require.Len(t, transcript.Messages, 2)
	assert.Equal(t, domain.RoleUser, transcript.Messages[0].Role)
	assert.Equal(t, domain.RoleModel, transcript.Messages[1].Role)

	_, _, err = svc.UserConversations(ctx, 999)
	assert.ErrorIs(t, err, admin_services.ErrUserNotFound)
	_, err = svc.ConversationMessages(ctx, 999)
	assert.ErrorIs(t, err, admin_services.ErrConversationNotFound)
}
