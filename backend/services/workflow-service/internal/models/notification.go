package models

import "time"

// NotificationType names the event that produced a notification.
type NotificationType string

const (
	NotificationAllocationApproved NotificationType = "allocation-approved"
	NotificationPayoutApproved     NotificationType = "payout-approved"
	NotificationPaymentReceived    NotificationType = "payment-received"
)

// Notification is a system message for one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
