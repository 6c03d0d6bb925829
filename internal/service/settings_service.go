package service

import (
	"context"

	"socialvim/internal/models"
	"socialvim/internal/repository"
	"socialvim/internal/validation"
)

type SettingsService struct {
	users        *UserService
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(users *UserService, settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{users: users, settingsRepo: settingsRepo}
}

// Get merges handle's profile with its stored settings, or the defaults when
// none are stored.
func (s *SettingsService) Get(ctx context.Context, handle string) (models.SettingsView, error) {
	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return models.SettingsView{}, err
	}
	settings, err := s.settingsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return models.SettingsView{}, err
	}
	return models.NewSettingsView(user, settings), nil
}

// Update applies the fields present in update.
func (s *SettingsService) Update(ctx context.Context, handle string, update models.SettingsUpdate) error {
	if update.Username != nil {
		if err := validation.CheckHandle(*update.Username); err != nil {
			return err
		}
	}
	if err := validation.Struct(update); err != nil {
		return err
	}

	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return err
	}
	return s.settingsRepo.Update(ctx, user.ID, update)
}
