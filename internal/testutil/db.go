// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"socialvim/internal/database"
	"socialvim/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database named after the test and
// migrates every persistent model into it.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with default settings and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	u := &models.User{Username: username, DisplayName: username}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	settings := models.DefaultSettings(u.ID)
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("create settings for %s: %v", username, err)
	}
	return u
}

// CreatePost inserts a post authored by u with the given counters.
func CreatePost(t *testing.T, db *gorm.DB, u *models.User, content string, likes, reposts, comments int) *models.Post {
	t.Helper()

	p := &models.Post{
		AuthorID:      u.ID,
		AuthorHandle:  u.Username,
		Content:       content,
		LikesCount:    likes,
		RepostsCount:  reposts,
		CommentsCount: comments,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}
