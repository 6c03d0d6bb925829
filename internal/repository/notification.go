package repository

import (
	"context"
	"errors"

	"socialvim/internal/models"
	"socialvim/internal/observability"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	defer observability.TrackQuery("insert", "notifications")()

	if !models.IsValidNotificationType(n.Type) {
		return models.NewValidationError("invalid notification type: " + n.Type)
	}
	if err := r.db.WithContext(ctx).Omit("User", "Actor", "Post").Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListForUser returns the user's notifications newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, unreadOnly bool) ([]*models.Notification, error) {
	defer observability.TrackQuery("select", "notifications")()

	q := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	notifications := []*models.Notification{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// MarkRead flags the notification as read. Marking twice is not an error.
func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	defer observability.TrackQuery("update", "notifications")()

	var n models.Notification
	if err := r.db.WithContext(ctx).Select("id").First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Notification", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
