package service

import (
	"context"
	"testing"

	"socialvim/internal/models"
	"socialvim/internal/repository"
	"socialvim/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatService(t *testing.T) (*ChatService, *UserService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	users := NewUserService(repository.NewUserRepository(db))
	return NewChatService(users, repository.NewChatRepository(db)), users, db
}

func TestChatService_OpenDM(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	ab, err := svc.OpenDM(ctx, "alice", "bob")
	require.NoError(t, err)
	ba, err := svc.OpenDM(ctx, "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, []string{"alice", "bob"}, ab.ParticipantHandles)
	assert.Equal(t, []string{"bob", "alice"}, ba.ParticipantHandles)
	assert.False(t, ab.Unread)

	_, err = svc.OpenDM(ctx, "alice", "alice")
	assert.True(t, models.IsValidation(err))

	_, err = svc.OpenDM(ctx, "alice", "nobody")
	assert.True(t, models.IsNotFound(err))

	// OpenDM never registers handles.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "nobody").Count(&count).Error)
	assert.Zero(t, count)
}

func TestChatService_SendAndList(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	conv, err := svc.OpenDM(ctx, "alice", "bob")
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, conv.ID, "alice", "hello bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.SenderHandle)
	assert.False(t, msg.IsRead)
	assert.Equal(t, msg.CreatedAt, msg.Timestamp)

	_, err = svc.SendMessage(ctx, conv.ID, "bob", "hi alice")
	require.NoError(t, err)

	msgs, err := svc.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello bob", msgs[0].Content)
	assert.Equal(t, "hi alice", msgs[1].Content)

	convs, err := svc.ListConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "hi alice", convs[0].LastMessagePreview)

	empty, err := svc.ListMessages(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatService_SendMessageErrors(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")

	_, err := svc.SendMessage(ctx, 1, "ghost", "boo")
	assert.True(t, models.IsNotFound(err))

	_, err = svc.SendMessage(ctx, 12345, "alice", "anyone?")
	assert.True(t, models.IsNotFound(err))

}

func TestChatService_SendMessageKeepsContentVerbatim(t *testing.T) {
	svc, _, db := newChatService(t)
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	conv, err := svc.OpenDM(ctx, "alice", "bob")
	require.NoError(t, err)

	for _, content := range []string{"  hi there  ", ""} {
		msg, err := svc.SendMessage(ctx, conv.ID, "alice", content)
		require.NoError(t, err)
		assert.Equal(t, content, msg.Content)

		var stored models.Conversation
		require.NoError(t, db.First(&stored, conv.ID).Error)
		assert.Equal(t, content, stored.LastMessagePreview)
	}
}

func TestChatService_ListConversationsRegistersHandle(t *testing.T) {
	svc, users, _ := newChatService(t)
	ctx := context.Background()

	convs, err := svc.ListConversations(ctx, "newcomer")
	require.NoError(t, err)
	assert.Empty(t, convs)

	u, err := users.Peek(ctx, "newcomer")
	require.NoError(t, err)
	assert.NotNil(t, u)
}
