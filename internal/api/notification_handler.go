package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/apierr"
	"nutriplan/internal/logger"
	"nutriplan/internal/notification"
)

// NotificationService reads and updates stored notifications.
type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]notification.Notification, int64, error)
	MarkRead(ctx context.Context, id string) (*notification.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationHandler struct {
	notifications NotificationService
	log           *logger.Logger
}

func NewNotificationHandler(n NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: n, log: log.With("handler", "notifications")}
}

var errUserIDRequired = errors.New("userId is required")

// List handles GET /api/notifications?userId&limit.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, h.log, apierr.BadRequest("invalid_request", errUserIDRequired), "", nil)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, unread, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.log, err, "Error fetching notifications", nil)
		return
	}
	respondOK(c, gin.H{"notifications": list, "unreadCount": unread})
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"))
	if err == nil && n == nil {
		err = apierr.NotFound("notification_not_found", errors.New("notification not found"))
	}
	if err != nil {
		respondError(c, h.log, err, "Error updating notification", nil)
		return
	}
	respondOK(c, gin.H{"notification": n})
}

// MarkAllRead handles PATCH /api/notifications/read-all?userId.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, h.log, apierr.BadRequest("invalid_request", errUserIDRequired), "", nil)
		return
	}
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Error updating notifications", nil)
		return
	}
	respondOK(c, gin.H{"message": "All notifications marked as read", "updated": updated})
}
