package repository

import (
	"context"
	"errors"

	"socialvim/internal/models"
	"socialvim/internal/observability"

	"gorm.io/gorm"
)

// SettingsRepository reads and writes the settings screen, which spans the
// users and user_settings tables.
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.UserSettings, error)
	Update(ctx context.Context, userID uint, update models.SettingsUpdate) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a new SettingsRepository implementation.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUserID returns nil without error when the user has no settings row.
func (r *settingsRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserSettings, error) {
	defer observability.TrackQuery("select", "user_settings")()

	var rows []models.UserSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Update applies profile fields to users and preference fields to
// user_settings in one transaction, creating the settings row when absent.
func (r *settingsRepository) Update(ctx context.Context, userID uint, update models.SettingsUpdate) error {
	defer observability.TrackQuery("update", "user_settings")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if profile := update.ProfileUpdates(); len(profile) > 0 {
			res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(profile)
			if res.Error != nil {
				if isUniqueConstraintError(res.Error) {
					return models.NewValidationError("username is already taken")
				}
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("User", userID)
			}
		}

		var settings models.UserSettings
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			settings = models.DefaultSettings(userID)
		case err != nil:
			return err
		}

		update.Apply(&settings)
		return tx.Save(&settings).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}
