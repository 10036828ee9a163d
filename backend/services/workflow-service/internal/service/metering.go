package service

import (
	"context"
	"math"
	"time"

	"solarshare/backend/services/workflow-service/internal/models"
)

// DefaultChargerPowerKW is the assumed constant draw of a simulated charger.
const DefaultChargerPowerKW = 40.0

const (
	minSessionEnergyKWh = 0.001
	minSessionAmount    = 0.01
)

// Meter reports energy delivered during a session. FixedRateMeter stands in for
// real metering hardware.
type Meter interface {
	EnergyKWh(ctx context.Context, session models.ChargingSession, end time.Time) (float64, error)
}

// FixedRateMeter assumes a constant charging power.
type FixedRateMeter struct {
	PowerKW float64
}

// NewFixedRateMeter returns a meter drawing powerKW.
func NewFixedRateMeter(powerKW float64) *FixedRateMeter {
	if powerKW <= 0 {
		powerKW = DefaultChargerPowerKW
	}
	return &FixedRateMeter{PowerKW: powerKW}
}

// EnergyKWh computes power x elapsed hours.
func (m *FixedRateMeter) EnergyKWh(_ context.Context, session models.ChargingSession, end time.Time) (float64, error) {
	elapsed := end.Sub(session.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	return m.PowerKW * elapsed.Hours(), nil
}

// settle rounds energy to 3 decimals and amount to 2, applying the minimum
// billable figures so a completed session never bills zero.
func settle(energyKWh, rate float64) (float64, float64) {
	energy := roundTo(energyKWh, 3)
	if energy <= 0 {
		energy = minSessionEnergyKWh
	}
	amount := roundTo(energy*rate, 2)
	if amount <= 0 {
		amount = minSessionAmount
	}
	return energy, amount
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
