package repository_test

import (
	"context"
	"testing"

	"github.com/iyunix/go-gemchat/internal/database/databasetest"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repos struct {
	db            *gorm.DB
	users         repository.UserRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func newRepos(t *testing.T) repos {
	db := databasetest.New(t)
	return repos{
		db:            db,
		users:         repository.NewGormUserRepository(db),
		conversations: repository.NewConversationRepository(db),
		messages:      repository.NewMessageRepository(db),
	}
}

func (r repos) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := r.users.Create(context.Background(), &domain.User{Username: name})
	require.NoError(t, err)
	return u
}

func (r repos) conversation(t *testing.T, userID uint, title string) *domain.Conversation {
	t.Helper()
	c, err := r.conversations.Create(context.Background(), &domain.Conversation{UserID: userID, Title: title})
	require.NoError(t, err)
	return c
}

func (r repos) message(t *testing.T, conversationID uint, role domain.MessageRole, content string) *domain.Message {
	t.Helper()
	m, err := r.messages.Create(context.Background(), &domain.Message{ConversationID: conversationID, Role: role, Content: content})
	require.NoError(t, err)
	return m
}

func TestUserRepository_Lookups(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	email := "ada@example.com"
	googleID := "g-123"
	created, err := r.users.Create(ctx, &domain.User{Username: "ada", Email: &email, GoogleID: &googleID})
	require.NoError(t, err)

	byName, err := r.users.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := r.users.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byGoogle, err := r.users.FindByGoogleID(ctx, googleID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byGoogle.ID)

	_, err = r.users.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	exists, err := r.users.ExistsByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	r := newRepos(t)
	r.user(t, "dup")

	_, err := r.users.Create(context.Background(), &domain.User{Username: "dup"})
	assert.Error(t, err)
}

func TestUserRepository_NullableUniqueColumns(t *testing.T) {
	r := newRepos(t)
	// Several users without email or google id must not collide on the unique indexes.
	r.user(t, "one")
	r.user(t, "two")

	count, err := r.users.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestConversationRepository_FindByIDForUser(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	other := r.user(t, "other")
	conv := r.conversation(t, owner.ID, "mine")

	got, err := r.conversations.FindByIDForUser(ctx, conv.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)

	_, err = r.conversations.FindByIDForUser(ctx, conv.ID, other.ID)
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)

	_, err = r.conversations.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestConversationRepository_DefaultTitle(t *testing.T) {
	r := newRepos(t)
	owner := r.user(t, "owner")
	conv := r.conversation(t, owner.ID, "")
	assert.Equal(t, domain.DefaultConversationTitle, conv.Title)
}

func TestConversationRepository_OrderedByUpdatedAt(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	first := r.conversation(t, owner.ID, "first")
	second := r.conversation(t, owner.ID, "second")

	list, err := r.conversations.FindByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, r.conversations.TouchUpdatedAt(ctx, first.ID))

	list, err = r.conversations.FindByUserID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestConversationRepository_CreateWithMessage(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")

	conv := &domain.Conversation{UserID: owner.ID, Title: "hello"}
	msg := &domain.Message{Role: domain.RoleUser, Content: "hello"}
	require.NoError(t, r.conversations.CreateWithMessage(ctx, conv, msg))
	assert.NotZero(t, conv.ID)
	assert.Equal(t, conv.ID, msg.ConversationID)

	// An invalid first message leaves no conversation behind.
	err := r.conversations.CreateWithMessage(ctx, &domain.Conversation{UserID: owner.ID}, &domain.Message{Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	count, err := r.conversations.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMessageRepository_CreationOrder(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	conv := r.conversation(t, owner.ID, "ordered")

	want := []string{"one", "two", "three", "four"}
	for i, content := range want {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleModel
		}
		r.message(t, conv.ID, role, content)
	}

	got, err := r.messages.FindByConversationID(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range got {
		assert.Equal(t, want[i], got[i].Content)
		if i > 0 {
			assert.False(t, got[i].CreatedAt.Before(got[i-1].CreatedAt))
		}
	}
}

func TestMessageRepository_RejectsInvalidMessages(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	conv := r.conversation(t, owner.ID, "x")

	_, err := r.messages.Create(ctx, &domain.Message{ConversationID: conv.ID, Role: "assistant", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = r.messages.Create(ctx, &domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestConversationRepository_DeleteCascadesMessages(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	other := r.user(t, "other")
	conv := r.conversation(t, owner.ID, "doomed")
	r.message(t, conv.ID, domain.RoleUser, "hi")
	r.message(t, conv.ID, domain.RoleModel, "hello")

	err := r.conversations.Delete(ctx, conv.ID, other.ID)
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)

	require.NoError(t, r.conversations.Delete(ctx, conv.ID, owner.ID))

	msgs, err := r.messages.FindByConversationID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	keeper := r.user(t, "keeper")
	c1 := r.conversation(t, owner.ID, "a")
	c2 := r.conversation(t, owner.ID, "b")
	kept := r.conversation(t, keeper.ID, "kept")
	r.message(t, c1.ID, domain.RoleUser, "1")
	r.message(t, c2.ID, domain.RoleUser, "2")
	r.message(t, kept.ID, domain.RoleUser, "3")

	require.NoError(t, r.users.Delete(ctx, owner.ID))

	_, err := r.users.FindByID(ctx, owner.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	convs, err := r.conversations.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, convs)

	msgs, err := r.messages.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, msgs)

	assert.ErrorIs(t, r.users.Delete(ctx, owner.ID), repository.ErrUserNotFound)
}

func TestForeignKeysCascadeAtStorageLevel(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	owner := r.user(t, "owner")
	conv := r.conversation(t, owner.ID, "fk")
	r.message(t, conv.ID, domain.RoleUser, "hi")

	// Bypass the repository so only the FK constraint can remove the messages.
	require.NoError(t, r.db.Exec("DELETE FROM conversations WHERE id = ?", conv.ID).Error)

	msgs, err := r.messages.FindByConversationID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
