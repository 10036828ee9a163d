package models

import "time"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentMethod is how the payer settles.
type PaymentMethod string

const (
	MethodQR   PaymentMethod = "qr"
	MethodUPI  PaymentMethod = "upi"
	MethodCard PaymentMethod = "card"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	return m == MethodQR || m == MethodUPI || m == MethodCard
}

// Payment settles one charging session.
type Payment struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	UserID      string        `json:"user_id"`
	UserName    string        `json:"user_name"`
	UserEmail   string        `json:"user_email"`
	Amount      float64       `json:"amount"`
	EnergyKWh   float64       `json:"energy_kwh"`
	Rate        float64       `json:"rate"`
	Method      PaymentMethod `json:"payment_method"`
	QRPayload   string        `json:"qr_payload,omitempty"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// PaymentRequest asks to pay for a completed session.
type PaymentRequest struct {
	SessionID string        `json:"session_id"`
	Method    PaymentMethod `json:"payment_method"`
}

// AdminTransaction is the admin listing view of a payment.
type AdminTransaction struct {
	PaymentID   string        `json:"payment_id"`
	SessionID   string        `json:"session_id"`
	UserID      string        `json:"user_id"`
	UserName    string        `json:"user_name"`
	EnergyKWh   float64       `json:"energy_kwh"`
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// RevenueSummary aggregates payments for analytics views.
type RevenueSummary struct {
	CompletedRevenue float64 `json:"completed_revenue"`
	PendingRevenue   float64 `json:"pending_revenue"`
	EnergySoldKWh    float64 `json:"energy_sold_kwh"`
	NetOfGST         float64 `json:"net_of_gst"`
	GST              float64 `json:"gst"`
	CompletedCount   int     `json:"completed_count"`
	PendingCount     int     `json:"pending_count"`
}
