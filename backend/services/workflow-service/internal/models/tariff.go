package models

import "time"

// Tariff describes price per kWh.
type Tariff struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PricePerKWh float64   `json:"price_per_kwh"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}
