package seed

import (
	"context"
	"testing"

	"socialvim/internal/models"
	"socialvim/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	f := NewFactory(db, 7)

	u, err := f.CreateUser(ctx, func(u *models.User) { u.Username = "factory_user" })
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "factory_user", u.Username)

	var settings models.UserSettings
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&settings).Error)
	assert.True(t, settings.EmailNotifications)

	p, err := f.CreatePost(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.Username, p.AuthorHandle)
	assert.NotEmpty(t, p.Content)
	assert.Equal(t, 1, u.PostsCount)

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, 1, stored.PostsCount)
}

func TestFactory_BuildUserHandleFits(t *testing.T) {
	f := NewFactory(nil, 1)
	for i := 0; i < 50; i++ {
		u := f.BuildUser()
		assert.NotEmpty(t, u.Username)
		assert.LessOrEqual(t, len(u.Username), 50)
	}
}
