package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"socialvim/internal/config"
	"socialvim/internal/models"
	"socialvim/internal/repository"
	"socialvim/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T, flags string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	cfg := &config.Config{
		AllowedOrigins:         "*",
		FeatureFlags:           flags,
		RateLimitMax:           1000,
		RateLimitWindowSeconds: 60,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return srv.NewApp(), db
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestNewServerWithDeps_RequiresDB(t *testing.T) {
	_, err := NewServerWithDeps(&config.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t, "")

	status, body := doJSON(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, serviceName, gjson.Get(body, "service").String())

	status, body = doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", gjson.Get(body, "status").String())
	assert.Equal(t, "social.vim API", gjson.Get(body, "service").String())

	status, body = doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", gjson.Get(body, "status").String())

	status, body = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", gjson.Get(body, "checks.database").String())
	assert.Equal(t, "unavailable", gjson.Get(body, "checks.redis").String())
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))

	s := &Server{config: &config.Config{}, db: db}
	app := fiber.New()
	app.Get("/health/ready", s.ReadinessCheck)

	status, body := doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", gjson.Get(body, "status").String())
	assert.Equal(t, "unhealthy", gjson.Get(body, "checks.database").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMe(t *testing.T) {
	app, db := newTestApp(t, "")

	status, body := doJSON(t, app, http.MethodGet, "/me?handle=vimuser", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vimuser", gjson.Get(body, "username").String())
	assert.Equal(t, "vimuser", gjson.Get(body, "handle").String())
	assert.Equal(t, "Vimuser", gjson.Get(body, "display_name").String())
	assert.Equal(t, "New to social.vim. Say hi!", gjson.Get(body, "bio").String())
	assert.Zero(t, gjson.Get(body, "posts_count").Int())

	// Second call resolves the same user.
	_, again := doJSON(t, app, http.MethodGet, "/me?handle=vimuser", nil)
	assert.Equal(t, gjson.Get(body, "id").Int(), gjson.Get(again, "id").Int())
	assert.Equal(t, int64(1), countUsers(t, db))

	status, body = doJSON(t, app, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, gjson.Get(body, "code").String())

	status, _ = doJSON(t, app, http.MethodGet, "/me?handle=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFeeds(t *testing.T) {
	app, db := newTestApp(t, "")

	author := testutil.CreateUser(t, db, "vimmaster")
	quiet := testutil.CreatePost(t, db, author, "quiet", 0, 0, 0)
	loud := testutil.CreatePost(t, db, author, "loud", 5, 2, 1)

	t.Run("timeline is newest first", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/timeline", nil)
		require.Equal(t, http.StatusOK, status)
		ids := gjson.Get(body, "#.id").Array()
		require.Len(t, ids, 2)
		assert.Equal(t, int64(loud.ID), ids[0].Int())
		assert.Equal(t, int64(quiet.ID), ids[1].Int())
	})

	t.Run("discover ranks by engagement", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/discover?limit=1", nil)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, int64(1), gjson.Get(body, "#").Int())
		assert.Equal(t, "loud", gjson.Get(body, "0.content").String())
		assert.Equal(t, int64(5), gjson.Get(body, "0.likes").Int())
		assert.Equal(t, int64(5), gjson.Get(body, "0.likes_count").Int())
		assert.Equal(t, "vimmaster", gjson.Get(body, "0.author").String())
	})

	t.Run("limit is validated", func(t *testing.T) {
		for _, q := range []string{"0", "101", "many"} {
			status, body := doJSON(t, app, http.MethodGet, "/timeline?limit="+q, nil)
			assert.Equal(t, http.StatusBadRequest, status, q)
			assert.Equal(t, models.CodeValidation, gjson.Get(body, "code").String())
		}
	})

	t.Run("unknown viewer is not registered", func(t *testing.T) {
		before := countUsers(t, db)
		status, body := doJSON(t, app, http.MethodGet, "/timeline?handle=lurker", nil)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, gjson.Get(body, "0.liked_by_user").Bool())
		assert.Equal(t, before, countUsers(t, db))
	})
}

func TestCreatePostAndToggleInteractions(t *testing.T) {
	app, db := newTestApp(t, "")

	status, body := doJSON(t, app, http.MethodPost, "/posts?handle=neovim_fan", fiber.Map{"content": "lazy.nvim rocks"})
	require.Equal(t, http.StatusOK, status)
	postID := gjson.Get(body, "id").Int()
	assert.Equal(t, "neovim_fan", gjson.Get(body, "author_handle").String())
	assert.False(t, gjson.Get(body, "liked_by_user").Bool())
	assert.False(t, gjson.Get(body, "reposted_by_user").Bool())

	var author models.User
	require.NoError(t, db.Where("username = ?", "neovim_fan").First(&author).Error)
	assert.Equal(t, 1, author.PostsCount)

	likePath := fmt.Sprintf("/posts/%d/like?handle=vimmaster", postID)
	status, body = doJSON(t, app, http.MethodPost, likePath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "success").Bool())

	_, body = doJSON(t, app, http.MethodGet, "/timeline?handle=vimmaster", nil)
	assert.Equal(t, int64(1), gjson.Get(body, "0.likes_count").Int())
	assert.True(t, gjson.Get(body, "0.liked_by_user").Bool())
	assert.False(t, gjson.Get(body, "0.reposted_by_user").Bool())

	// The same call again undoes the like.
	status, _ = doJSON(t, app, http.MethodPost, likePath, nil)
	require.Equal(t, http.StatusOK, status)
	_, body = doJSON(t, app, http.MethodGet, "/timeline?handle=vimmaster", nil)
	assert.Equal(t, int64(0), gjson.Get(body, "0.likes_count").Int())
	assert.False(t, gjson.Get(body, "0.liked_by_user").Bool())

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/posts/%d/repost?handle=vimmaster", postID), nil)
	require.Equal(t, http.StatusOK, status)
	_, body = doJSON(t, app, http.MethodGet, "/discover?handle=vimmaster", nil)
	assert.Equal(t, int64(1), gjson.Get(body, "0.reposts").Int())
	assert.True(t, gjson.Get(body, "0.reposted_by_user").Bool())

	status, body = doJSON(t, app, http.MethodPost, "/posts/9999/like", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, gjson.Get(body, "code").String())

	status, body = doJSON(t, app, http.MethodPost, "/posts?handle=neovim_fan", fiber.Map{"content": "  padded  "})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "  padded  ", gjson.Get(body, "content").String())

	status, body = doJSON(t, app, http.MethodPost, "/posts?handle=neovim_fan", fiber.Map{"content": ""})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", gjson.Get(body, "content").String())

	status, _ = doJSON(t, app, http.MethodPost, "/posts?handle=neovim_fan", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestComments(t *testing.T) {
	app, db := newTestApp(t, "")

	author := testutil.CreateUser(t, db, "vimmaster")
	post := testutil.CreatePost(t, db, author, "ciw", 0, 0, 0)
	path := fmt.Sprintf("/posts/%d/comments", post.ID)

	status, body := doJSON(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", body)

	status, body = doJSON(t, app, http.MethodPost, path+"?handle=emacs_refugee", fiber.Map{"text": "first"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "emacs_refugee", gjson.Get(body, "user").String())
	assert.Equal(t, "first", gjson.Get(body, "text").String())

	_, _ = doJSON(t, app, http.MethodPost, path+"?handle=tmux_wizard", fiber.Map{"text": "second"})

	_, body = doJSON(t, app, http.MethodGet, path, nil)
	assert.Equal(t, []string{"first", "second"}, stringsOf(gjson.Get(body, "#.text")))

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, 2, stored.CommentsCount)

	status, _ = doJSON(t, app, http.MethodPost, "/posts/9999/comments", fiber.Map{"text": "orphan"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, app, http.MethodPost, path, fiber.Map{"text": " :q! "})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, " :q! ", gjson.Get(body, "text").String())

	status, body = doJSON(t, app, http.MethodGet, "/posts/9999/comments", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", body)
}

func TestChatFlow(t *testing.T) {
	app, db := newTestApp(t, "")

	a := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	status, body := doJSON(t, app, http.MethodPost, "/dm", fiber.Map{"user_a_handle": "bob", "user_b_handle": "alice"})
	require.Equal(t, http.StatusOK, status)
	convID := gjson.Get(body, "id").Int()
	assert.Equal(t, []string{"bob", "alice"}, stringsOf(gjson.Get(body, "participant_handles")))
	assert.False(t, gjson.Get(body, "unread").Bool())

	// Symmetric: the reversed pair maps to the same conversation.
	_, body = doJSON(t, app, http.MethodPost, "/dm", fiber.Map{"user_a_handle": "alice", "user_b_handle": "bob"})
	assert.Equal(t, convID, gjson.Get(body, "id").Int())
	assert.Equal(t, []string{"alice", "bob"}, stringsOf(gjson.Get(body, "participant_handles")))

	msgPath := fmt.Sprintf("/conversations/%d/messages", convID)
	status, body = doJSON(t, app, http.MethodPost, msgPath, fiber.Map{"sender_handle": "alice", "content": "hi bob"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", gjson.Get(body, "sender_handle").String())
	assert.Equal(t, int64(a.ID), gjson.Get(body, "sender_id").Int())
	assert.False(t, gjson.Get(body, "is_read").Bool())

	_, _ = doJSON(t, app, http.MethodPost, msgPath, fiber.Map{"sender_handle": "bob", "content": "hey alice"})

	_, body = doJSON(t, app, http.MethodGet, msgPath, nil)
	assert.Equal(t, []string{"hi bob", "hey alice"}, stringsOf(gjson.Get(body, "#.content")))

	status, body = doJSON(t, app, http.MethodGet, "/conversations?handle=alice", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(1), gjson.Get(body, "#").Int())
	assert.Equal(t, "hey alice", gjson.Get(body, "0.last_message_preview").String())

	_, _ = doJSON(t, app, http.MethodPost, msgPath, fiber.Map{"sender_handle": "bob", "content": "  hi there  "})
	_, body = doJSON(t, app, http.MethodGet, "/conversations?handle=alice", nil)
	assert.Equal(t, "  hi there  ", gjson.Get(body, "0.last_message_preview").String())

	t.Run("errors", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/dm", fiber.Map{"user_a_handle": "alice", "user_b_handle": "ghost"})
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = doJSON(t, app, http.MethodPost, "/dm", fiber.Map{"user_a_handle": "alice", "user_b_handle": "alice"})
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = doJSON(t, app, http.MethodPost, "/dm", fiber.Map{"user_a_handle": "alice"})
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = doJSON(t, app, http.MethodPost, msgPath, fiber.Map{"sender_handle": "ghost", "content": "boo"})
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = doJSON(t, app, http.MethodPost, "/conversations/9999/messages", fiber.Map{"sender_handle": "alice", "content": "hello?"})
		assert.Equal(t, http.StatusNotFound, status)

		status, body := doJSON(t, app, http.MethodGet, "/conversations/9999/messages", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "[]", body)
	})
}

func TestNotifications(t *testing.T) {
	app, db := newTestApp(t, "")

	me := testutil.CreateUser(t, db, "yourname")
	actor := testutil.CreateUser(t, db, "vimmaster")
	repo := repository.NewNotificationRepository(db)
	first := &models.Notification{UserID: me.ID, Type: models.NotificationLike, ActorID: actor.ID, ActorHandle: actor.Username, Content: "liked your post"}
	second := &models.Notification{UserID: me.ID, Type: models.NotificationFollow, ActorID: actor.ID, ActorHandle: actor.Username, Content: "started following you"}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))

	status, body := doJSON(t, app, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), gjson.Get(body, "#").Int())
	assert.Equal(t, "vimmaster", gjson.Get(body, "0.actor").String())
	assert.Equal(t, "vimmaster", gjson.Get(body, "0.username").String())

	path := fmt.Sprintf("/notifications/%d/read", first.ID)
	status, body = doJSON(t, app, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "success").Bool())

	// Idempotent.
	status, _ = doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = doJSON(t, app, http.MethodGet, "/notifications?unread=true", nil)
	require.Equal(t, int64(1), gjson.Get(body, "#").Int())
	assert.Equal(t, int64(second.ID), gjson.Get(body, "0.id").Int())

	status, _ = doJSON(t, app, http.MethodPost, "/notifications/9999/read", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSettings(t *testing.T) {
	app, _ := newTestApp(t, "")

	status, body := doJSON(t, app, http.MethodGet, "/settings?handle=tmux_wizard", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "email_notifications").Bool())
	assert.True(t, gjson.Get(body, "show_online_status").Bool())
	assert.False(t, gjson.Get(body, "private_account").Bool())
	assert.Equal(t, "tmux_wizard", gjson.Get(body, "username").String())

	status, body = doJSON(t, app, http.MethodPut, "/settings?handle=tmux_wizard", fiber.Map{
		"bio":                 "C-a forever",
		"private_account":     true,
		"email_notifications": false,
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "success").Bool())

	_, body = doJSON(t, app, http.MethodGet, "/settings?handle=tmux_wizard", nil)
	assert.Equal(t, "C-a forever", gjson.Get(body, "bio").String())
	assert.True(t, gjson.Get(body, "private_account").Bool())
	assert.False(t, gjson.Get(body, "email_notifications").Bool())
	assert.True(t, gjson.Get(body, "show_online_status").Bool(), "untouched fields keep their values")

	status, _ = doJSON(t, app, http.MethodPut, "/settings?handle=tmux_wizard", fiber.Map{"username": ""})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminSeed(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		app, db := newTestApp(t, "")
		status, _ := doJSON(t, app, http.MethodPost, "/admin/seed", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Zero(t, countUsers(t, db))
	})

	t.Run("seeds once when enabled", func(t *testing.T) {
		app, db := newTestApp(t, "seed_endpoint=on")

		status, body := doJSON(t, app, http.MethodPost, "/admin/seed", nil)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, gjson.Get(body, "seeded").Bool())
		assert.Positive(t, gjson.Get(body, "users").Int())
		users := countUsers(t, db)

		status, body = doJSON(t, app, http.MethodPost, "/admin/seed", nil)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, gjson.Get(body, "seeded").Bool())
		assert.Equal(t, users, countUsers(t, db))

		status, body = doJSON(t, app, http.MethodPost, "/admin/seed", fiber.Map{"clean": true, "fake_users": 2})
		require.Equal(t, http.StatusOK, status)
		assert.True(t, gjson.Get(body, "seeded").Bool())
		assert.Equal(t, users+2, countUsers(t, db))

		status, _ = doJSON(t, app, http.MethodPost, "/admin/seed", fiber.Map{"fake_users": -1})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestGetFeatureFlags(t *testing.T) {
	app, _ := newTestApp(t, "seed_endpoint=on,beta=off")

	status, body := doJSON(t, app, http.MethodGet, "/admin/feature-flags?handle=vimmaster", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "on", gjson.Get(body, "raw.seed_endpoint").String())
	assert.True(t, gjson.Get(body, "evaluated.seed_endpoint").Bool())
	assert.False(t, gjson.Get(body, "evaluated.beta").Bool())
}

func stringsOf(r gjson.Result) []string {
	out := []string{}
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}
