package models

import "time"

// PayoutRequestStatus is the lifecycle state of a member payout request.
type PayoutRequestStatus string

const (
	PayoutRequestPending  PayoutRequestStatus = "pending"
	PayoutRequestApproved PayoutRequestStatus = "approved"
	PayoutRequestRejected PayoutRequestStatus = "rejected"
)

// PayoutRequest is a member-initiated ask for a transfer.
type PayoutRequest struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	UserName   string              `json:"user_name"`
	UserEmail  string              `json:"user_email"`
	Amount     float64             `json:"amount"`
	Status     PayoutRequestStatus `json:"status"`
	Reason     string              `json:"reason,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	ApprovedAt *time.Time          `json:"approved_at,omitempty"`
	RejectedAt *time.Time          `json:"rejected_at,omitempty"`
}

// PayoutStatus is the lifecycle state of a payout record.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

// PayoutRecord is one entry of a revenue distribution batch.
type PayoutRecord struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	UserName          string       `json:"user_name"`
	TotalEnergyShared float64      `json:"total_energy_shared"`
	SharePercentage   float64      `json:"share_percentage"`
	PayoutAmount      float64      `json:"payout_amount"`
	Status            PayoutStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	ProcessedAt       *time.Time   `json:"processed_at,omitempty"`
}

// PayoutShare is a precomputed batch entry before it is stamped.
type PayoutShare struct {
	UserID            string  `json:"user_id"`
	UserName          string  `json:"user_name"`
	TotalEnergyShared float64 `json:"total_energy_shared"`
	SharePercentage   float64 `json:"share_percentage"`
	PayoutAmount      float64 `json:"payout_amount"`
}

// Contribution is a member's reported energy for a distribution round.
type Contribution struct {
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	EnergyKWh float64 `json:"energy_kwh"`
}
