package service

import (
	"context"
	"testing"

	"socialvim/internal/models"
	"socialvim/internal/repository"
	"socialvim/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserService(repository.NewUserRepository(db))
	svc := NewCommentService(users, repository.NewCommentRepository(db))
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "vimmaster")
	p := testutil.CreatePost(t, db, author, "thoughts?", 0, 0, 0)

	view, err := svc.AddComment(ctx, p.ID, "commenter", "great post")
	require.NoError(t, err)
	assert.Equal(t, models.CommentView{User: "commenter", Text: "great post"}, view)

	list, err := svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CommentView{{User: "commenter", Text: "great post"}}, list)

	_, err = svc.AddComment(ctx, 9999, "commenter", "lost")
	assert.True(t, models.IsNotFound(err))

	blank, err := svc.AddComment(ctx, p.ID, "commenter", "")
	require.NoError(t, err)
	assert.Equal(t, "", blank.Text)

	none, err := svc.ListComments(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
