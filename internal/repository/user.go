package repository

import (
	"context"
	"errors"
	"fmt"

	"socialvim/internal/models"
	"socialvim/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	CreateWithSettings(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByUsername reads from the primary so a handle registered a moment ago is
// always visible to the request that follows.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// CreateWithSettings inserts the user and its default settings row atomically.
// A username collision is reported as ErrDuplicate.
func (r *userRepository) CreateWithSettings(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Settings", "Posts").Create(user).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(user.ID)
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}
		user.Settings = &settings
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: username %q", ErrDuplicate, user.Username)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("count", "users")()

	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
