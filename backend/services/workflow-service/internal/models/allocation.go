package models

import "time"

// AllocationStatus is the lifecycle state of a station allocation request.
type AllocationStatus string

const (
	AllocationPending  AllocationStatus = "pending"
	AllocationApproved AllocationStatus = "approved"
	AllocationRejected AllocationStatus = "rejected"
)

// StationAllocationRequest asks for standing access to a station.
type StationAllocationRequest struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	UserName         string           `json:"user_name"`
	UserEmail        string           `json:"user_email"`
	StationID        string           `json:"station_id"`
	StationName      string           `json:"station_name"`
	VehicleModel     string           `json:"vehicle_model"`
	VehicleRegNumber string           `json:"vehicle_reg_number"`
	Status           AllocationStatus `json:"status"`
	Reason           string           `json:"reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
}

// AllocationRequest carries the fields an EV owner supplies.
type AllocationRequest struct {
	StationID        string `json:"station_id"`
	StationName      string `json:"station_name"`
	VehicleModel     string `json:"vehicle_model"`
	VehicleRegNumber string `json:"vehicle_reg_number"`
}
