// Package service provides application business logic (identity, posts, chat, settings).
package service

import (
	"context"
	"errors"
	"log/slog"

	"socialvim/internal/middleware"
	"socialvim/internal/models"
	"socialvim/internal/observability"
	"socialvim/internal/repository"
	"socialvim/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultBio is given to every auto-registered user.
const DefaultBio = "New to social.vim. Say hi!"

// UserService resolves caller-supplied handles to users.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// defaultDisplayName title-cases the handle. A Caser is stateful, so one is
// built per call.
func defaultDisplayName(handle string) string {
	return cases.Title(language.English).String(handle)
}

// ResolveOrRegister returns the user owning handle, registering it on first
// sight with a canned profile and default settings.
func (s *UserService) ResolveOrRegister(ctx context.Context, handle string) (user *models.User, err error) {
	if err = validation.CheckHandle(handle); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "UserService.ResolveOrRegister", attribute.String("user.handle", handle))
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.userRepo.GetByUsername(ctx, handle)
	if err == nil {
		return user, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	user = &models.User{
		Username:    handle,
		DisplayName: defaultDisplayName(handle),
		Bio:         DefaultBio,
	}
	if err = s.userRepo.CreateWithSettings(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race to a concurrent registration of the same handle.
			return s.userRepo.GetByUsername(ctx, handle)
		}
		return nil, err
	}

	observability.UsersRegistered.Inc()
	middleware.Logger.InfoContext(ctx, "registered new handle", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Lookup returns the user owning handle without registering it.
func (s *UserService) Lookup(ctx context.Context, handle string) (*models.User, error) {
	if err := validation.CheckHandle(handle); err != nil {
		return nil, err
	}
	return s.userRepo.GetByUsername(ctx, handle)
}

// Peek is Lookup that reports an unknown handle as (nil, nil).
func (s *UserService) Peek(ctx context.Context, handle string) (*models.User, error) {
	u, err := s.Lookup(ctx, handle)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Profile resolves (or registers) handle and returns its public view.
func (s *UserService) Profile(ctx context.Context, handle string) (models.UserView, error) {
	u, err := s.ResolveOrRegister(ctx, handle)
	if err != nil {
		return models.UserView{}, err
	}
	return models.NewUserView(u), nil
}
