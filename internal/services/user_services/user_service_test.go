package user_services_test

import (
	"context"
	"testing"

	"github.com/iyunix/go-gemchat/internal/database/databasetest"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository"
	"github.com/iyunix/go-gemchat/internal/services"
	"github.com/iyunix/go-gemchat/internal/services/user_services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	users := repository.NewGormUserRepository(databasetest.New(t))
	svc := user_services.NewUserService(users, &services.NoOpLogger{})

	seed := user_services.AdminSeed{Username: "admin", Email: "admin@example.com", Password: "changeme"}
	created, err := svc.SeedAdmin(ctx, seed)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.ValidatePassword("changeme"))
	assert.Equal(t, "admin@example.com", admin.EmailValue())

	created, err = svc.SeedAdmin(ctx, seed)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.SeedAdmin(ctx, user_services.AdminSeed{Username: "other", Email: "admin@example.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, created, "email already in use")

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	db := databasetest.New(t)
	users := repository.NewGormUserRepository(db)
	conversations := repository.NewConversationRepository(db)
	messages := repository.NewMessageRepository(db)
	svc := user_services.NewUserService(users, &services.NoOpLogger{})

	user, err := users.Create(ctx, &domain.User{Username: "leaving"})
	require.NoError(t, err)
	conv := &domain.Conversation{UserID: user.ID}
	require.NoError(t, conversations.CreateWithMessage(ctx, conv, &domain.Message{Role: domain.RoleUser, Content: "bye"}))

	require.NoError(t, svc.DeleteUser(ctx, "leaving"))

	n, err := conversations.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = messages.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.DeleteUser(ctx, "leaving"), repository.ErrUserNotFound)
}
