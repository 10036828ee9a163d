package models

import "time"

// SessionStatus is the lifecycle state of a charging session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// ChargingSession is a metered interval of vehicle charging.
type ChargingSession struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	UserName         string        `json:"user_name"`
	StationID        string        `json:"station_id"`
	StationName      string        `json:"station_name"`
	VehicleModel     string        `json:"vehicle_model"`
	VehicleRegNumber string        `json:"vehicle_reg_number"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	EnergyKWh        float64       `json:"energy_kwh"`
	Rate             float64       `json:"rate"`
	TotalAmount      float64       `json:"total_amount"`
	Status           SessionStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// SessionRequest carries the fields needed to start charging.
type SessionRequest struct {
	StationID        string `json:"station_id"`
	StationName      string `json:"station_name"`
	VehicleModel     string `json:"vehicle_model"`
	VehicleRegNumber string `json:"vehicle_reg_number"`
}
