package service

import (
	"context"
	"errors"

	"solarshare/backend/services/workflow-service/internal/models"
)

// DefaultPricePerKWh is the flat charging price when no tariff is stored.
const DefaultPricePerKWh = 12.0

// TariffRepository looks up the active tariff.
type TariffRepository interface {
	GetActive(ctx context.Context) (*models.Tariff, error)
}

// TariffService provides tariff lookups with fallback.
type TariffService struct {
	repo          TariffRepository
	defaultTariff models.Tariff
}

// NewTariffService returns service instance. repo may be nil.
func NewTariffService(repo TariffRepository, defaultPrice float64) *TariffService {
	return &TariffService{
		repo: repo,
		defaultTariff: models.Tariff{
			Name:        "Default",
			PricePerKWh: defaultPrice,
			IsActive:    true,
		},
	}
}

// ActiveTariff returns currently active tariff or default fallback.
func (s *TariffService) ActiveTariff(ctx context.Context) (*models.Tariff, error) {
	if s.repo == nil {
		if s.defaultTariff.PricePerKWh <= 0 {
			return nil, errors.New("tariff: no tariff configured")
		}
		t := s.defaultTariff
		return &t, nil
	}

	tariff, err := s.repo.GetActive(ctx)
	if err != nil || tariff == nil || tariff.PricePerKWh <= 0 {
		if s.defaultTariff.PricePerKWh <= 0 {
			if err == nil {
				err = errors.New("tariff: active tariff has no price")
			}
			return nil, err
		}
		t := s.defaultTariff
		return &t, nil
	}
	return tariff, nil
}
