package notification

import (
	"context"

	"nutriplan/internal/logger"
)

// Pusher delivers a notification outside the application, e.g. to a chat.
type Pusher interface {
	Push(ctx context.Context, n Notification) error
}

// Service persists notifications and pushes high priority ones.
type Service struct {
	repo   *Repository
	pusher Pusher
	log    *logger.Logger
}

// NewService creates a Service. pusher may be nil.
func NewService(repo *Repository, pusher Pusher, log *logger.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, log: log.With("component", "notifications")}
}

// Notify stores n. High priority notifications are also pushed; a failed
// push is logged and not returned.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if err := s.repo.Create(ctx, &n); err != nil {
		return err
	}
	s.log.Info("Notification created", "notification_id", n.ID, "user_id", n.UserID, "priority", n.Priority)

	if n.Priority != PriorityHigh || s.pusher == nil {
		return nil
	}
	if err := s.pusher.Push(ctx, n); err != nil {
		s.log.Warn("Failed to push notification", "notification_id", n.ID, "error", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, int64, error) {
	return s.repo.List(ctx, userID, limit)
}

func (s *Service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
