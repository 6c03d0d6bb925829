package service

import (
	"context"

	"socialvim/internal/models"
	"socialvim/internal/repository"
)

type NotificationService struct {
	users            *UserService
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(users *UserService, notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{users: users, notificationRepo: notificationRepo}
}

// List returns handle's notifications newest first, optionally unread only.
func (s *NotificationService) List(ctx context.Context, handle string, unreadOnly bool) ([]models.NotificationView, error) {
	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return nil, err
	}
	items, err := s.notificationRepo.ListForUser(ctx, user.ID, unreadOnly)
	if err != nil {
		return nil, err
	}
	views := make([]models.NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, models.NewNotificationView(n))
	}
	return views, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
