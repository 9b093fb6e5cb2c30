package chat_test

import (
	"context"
	"testing"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/services/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatServiceOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := chat.NewChatService(f.conversations, f.messages, nopLogger{})

	conv := &domain.Conversation{UserID: f.user.ID, Title: "Mine"}
	require.NoError(t, f.conversations.CreateWithMessage(ctx, conv, &domain.Message{Role: domain.RoleUser, Content: "hello"}))

	list, err := svc.ListConversations(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mine", list[0].Title)

	msgs, err := svc.GetMessages(ctx, f.user.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	stranger := f.user.ID + 100
	list, err = svc.ListConversations(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.GetConversation(ctx, stranger, conv.ID)
	assert.True(t, chat.IsType(err, chat.ErrTypeNotFound))
	_, err = svc.GetMessages(ctx, stranger, conv.ID)
	assert.True(t, chat.IsType(err, chat.ErrTypeNotFound))
	err = svc.DeleteConversation(ctx, stranger, conv.ID)
	assert.True(t, chat.IsType(err, chat.ErrTypeNotFound))

	require.NoError(t, svc.DeleteConversation(ctx, f.user.ID, conv.ID))
	_, err = svc.GetConversation(ctx, f.user.ID, conv.ID)
	assert.True(t, chat.IsType(err, chat.ErrTypeNotFound))

	count, err := f.messages.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
