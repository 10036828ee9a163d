package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// UserNotifications returns the notifications addressed to userID.
func (s *WorkflowService) UserNotifications(userID string) []models.Notification {
	out := []models.Notification{}
	s.read(func() {
		for _, n := range s.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
	})
	return out
}

// UnreadNotificationsCount counts unread notifications of userID.
func (s *WorkflowService) UnreadNotificationsCount(userID string) int {
	count := 0
	s.read(func() {
		for _, n := range s.notifications {
			if n.UserID == userID && !n.Read {
				count++
			}
		}
	})
	return count
}

// Notification returns one notification by id.
func (s *WorkflowService) Notification(id string) (*models.Notification, error) {
	var out *models.Notification
	s.read(func() {
		for _, n := range s.notifications {
			if n.ID == id {
				n := n
				out = &n
				return
			}
		}
	})
	if out == nil {
		return nil, notFound("notification", id)
	}
	return out, nil
}

// MarkNotificationAsRead sets the read flag. Marking twice is not an error.
func (s *WorkflowService) MarkNotificationAsRead(ctx context.Context, id string) (*models.Notification, error) {
	var out models.Notification
	var changed bool
	err := s.mutate(func(time.Time) error {
		for i := range s.notifications {
			if s.notifications[i].ID == id {
				changed = !s.notifications[i].Read
				s.notifications[i].Read = true
				out = s.notifications[i]
				return nil
			}
		}
		return notFound("notification", id)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.record(ctx, "notification", id, "read", out.UserID, out)
		s.logger.Debug("notification read", zap.String("notification_id", id), zap.String("user_id", out.UserID))
	}
	return &out, nil
}
