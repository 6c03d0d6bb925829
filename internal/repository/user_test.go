package repository

import (
	"context"
	"errors"
	"testing"

	"socialvim/internal/models"
	"socialvim/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateWithSettings(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "vimmaster", DisplayName: "Vimmaster"}
	require.NoError(t, repo.CreateWithSettings(ctx, u))
	assert.NotZero(t, u.ID)
	require.NotNil(t, u.Settings)

	var settings models.UserSettings
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&settings).Error)
	assert.True(t, settings.EmailNotifications)
	assert.True(t, settings.ShowOnlineStatus)
	assert.False(t, settings.PrivateAccount)

	dup := &models.User{Username: "vimmaster", DisplayName: "Again"}
	err := repo.CreateWithSettings(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := testutil.CreateUser(t, db, "neovim_fan")

	got, err := repo.GetByUsername(ctx, "neovim_fan")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, "User 'nobody' not found", err.Error())
}
