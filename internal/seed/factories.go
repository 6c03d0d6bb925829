package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"socialvim/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds random users and posts and persists them.
// It is used by the seeder for bulk demo data and by tests.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	// MaxDays bounds how far back generated posts are dated.
	MaxDays int
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), MaxDays: 30}
}

// BuildUser returns an unsaved user with a unique-looking handle.
func (f *Factory) BuildUser() *models.User {
	handle := strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(100, 999))
	if len(handle) > 50 {
		handle = handle[:50]
	}
	return &models.User{
		Username:    handle,
		DisplayName: f.faker.Name(),
		Bio:         f.faker.HackerPhrase(),
		Followers:   f.faker.Number(0, 500),
		Following:   f.faker.Number(0, 500),
	}
}

// CreateUser persists a random user and its default settings.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser()
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Omit("Settings", "Posts").Create(user).Error; err != nil {
		return nil, err
	}
	settings := models.DefaultSettings(user.ID)
	if err := f.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post by author dated somewhere in the last MaxDays.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	maxDays := f.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return &models.Post{
		AuthorID:     author.ID,
		AuthorHandle: author.Username,
		Content:      f.faker.HackerPhrase(),
		CreatedAt:    time.Now().UTC().Add(-back),
	}
}

// CreatePost persists a random post for author and bumps its posts_count.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author)
	for _, override := range overrides {
		override(post)
	}

	if err := f.db.WithContext(ctx).Omit("Comments", "Interactions").Create(post).Error; err != nil {
		return nil, err
	}
	if err := f.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", author.ID).
		UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error; err != nil {
		return nil, err
	}
	author.PostsCount++
	return post, nil
}

// Pick returns a random element index in [0, n).
func (f *Factory) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}
