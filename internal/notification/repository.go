package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	notificationdb "nutriplan/internal/notification/notification_db"
)

const defaultListLimit = 20

// Repository is a database-backed store of notifications.
type Repository struct {
	queries *notificationdb.Queries
	now     func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{queries: notificationdb.New(db), now: time.Now}
}

// Create stores n, filling in its id and creation time.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = r.now().UTC().Truncate(time.Second)
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}

	err := r.queries.InsertNotification(ctx, notificationdb.InsertNotificationParams{
		ID:         n.ID,
		UserID:     n.UserID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       n.Type,
		Priority:   n.Priority,
		Read:       boolToInt(n.Read),
		Actionable: boolToInt(n.Actionable),
		Action:     n.Action,
		CreatedAt:  n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert notification for user %s: %w", n.UserID, err)
	}
	return nil
}

// List returns up to limit notifications for userID, newest first, and the
// number of unread ones.
func (r *Repository) List(ctx context.Context, userID string, limit int) ([]Notification, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.queries.ListNotificationsByUser(ctx, notificationdb.ListNotificationsByUserParams{
		UserID: userID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	unread, err := r.queries.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}

	out := make([]Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, unread, nil
}

// MarkRead marks one notification as read. It returns nil when id is unknown.
func (r *Repository) MarkRead(ctx context.Context, id string) (*Notification, error) {
	row, err := r.queries.MarkNotificationRead(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	n := fromRow(row)
	return &n, nil
}

// MarkAllRead marks every unread notification of userID as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := r.queries.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	return n, nil
}

func fromRow(row notificationdb.Notification) Notification {
	return Notification{
		ID:         row.ID,
		UserID:     row.UserID,
		Title:      row.Title,
		Message:    row.Message,
		Type:       row.Type,
		Priority:   row.Priority,
		Read:       row.Read != 0,
		Actionable: row.Actionable != 0,
		Action:     row.Action,
		CreatedAt:  row.CreatedAt,
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
