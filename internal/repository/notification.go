package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/waxlog/waxlog/internal/model"
)

// Common errors for notification repository operations.
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// CreateNotification inserts a notification for a user.
func (r *Repository) CreateNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, body, ref_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		n.RefID,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListNotifications returns a user's notifications, unread first then newest.
func (r *Repository) ListNotifications(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, ref_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY read ASC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.RefID, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllNotificationsRead marks every notification for the user as read and
// returns how many were updated.
func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return tag.RowsAffected(), nil
}
