package service

import (
	"context"
	"errors"

	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// ErrNotificationNotFound is returned for unknown or foreign notifications.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService handles the in-app notification inbox.
type NotificationService struct {
	repo *repository.Repository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo *repository.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns a user's notifications, unread first then newest.
func (s *NotificationService) List(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, error) {
	offset, limit = normalizePage(offset, limit)
	return s.repo.ListNotifications(ctx, userID, offset, limit)
}

// MarkRead marks one notification read. Scoped to the owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	err := s.repo.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, repository.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks every unread notification read and returns the count.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}
