package dbhelper

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ray-remotestate/bazaar/database"
	"github.com/ray-remotestate/bazaar/models"
)

// InsertNotification runs on exec so it can share a transaction with the
// status change that caused it.
func InsertNotification(exec SQLExecutor, n *models.Notification) error {
	id, err := newID()
	if err != nil {
		return err
	}
	n.ID = id
	n.IsRead = false
	n.CreatedAt = now()

	query := exec.Rebind(`INSERT INTO notifications (id, user_id, booking_id, type, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := exec.Exec(query, n.ID, n.UserID, n.BookingID, n.Type, n.Message, n.IsRead, n.CreatedAt); err != nil {
		return fmt.Errorf("creating notification for %s: %w", n.UserID, err)
	}
	return nil
}

func ListNotifications(userID uuid.UUID) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := database.Bazaar.Rebind(`
		SELECT id, user_id, booking_id, type, message, is_read, created_at FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`)
	if err := database.Bazaar.Select(&notifications, query, userID); err != nil {
		return nil, fmt.Errorf("listing notifications of %s: %w", userID, err)
	}
	return notifications, nil
}

// MarkNotificationRead reports false when no notification with id belongs to
// userID.
func MarkNotificationRead(id, userID uuid.UUID) (bool, error) {
	query := database.Bazaar.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`)
	result, err := database.Bazaar.Exec(query, true, id, userID)
	if err != nil {
		return false, fmt.Errorf("marking notification %s read: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fetching rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
