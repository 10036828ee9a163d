package models

import "time"

// ChargingRequest is a document of the live "ev_charging_requests" feed.
type ChargingRequest struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Vehicle     string    `json:"vehicle"`
	ChargerType string    `json:"charger_type"`
	Time        time.Time `json:"time"`
}
