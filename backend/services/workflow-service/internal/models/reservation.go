package models

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationRejected || s == ReservationCompleted || s == ReservationCancelled
}

// Reservation is a time-boxed request to use a charging station.
type Reservation struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	UserName         string            `json:"user_name"`
	UserEmail        string            `json:"user_email"`
	StationID        string            `json:"station_id"`
	StationName      string            `json:"station_name"`
	RequestedDate    string            `json:"requested_date"`
	RequestedTime    string            `json:"requested_time"`
	DurationMinutes  int               `json:"duration_minutes"`
	VehicleModel     string            `json:"vehicle_model"`
	VehicleRegNumber string            `json:"vehicle_reg_number"`
	Status           ReservationStatus `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	ApprovedBy       string            `json:"approved_by,omitempty"`
}

// ReservationRequest carries the fields a requester supplies.
type ReservationRequest struct {
	StationID        string `json:"station_id"`
	StationName      string `json:"station_name"`
	RequestedDate    string `json:"requested_date"` // YYYY-MM-DD
	RequestedTime    string `json:"requested_time"` // HH:MM
	DurationMinutes  int    `json:"duration_minutes"`
	VehicleModel     string `json:"vehicle_model"`
	VehicleRegNumber string `json:"vehicle_reg_number"`
}
