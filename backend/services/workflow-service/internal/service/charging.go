package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// StartChargingSession opens an active session for the actor. The actor must hold at
// least one approved station allocation, and the station must not already be charging.
// An empty station defaults to the actor's first allocated station.
func (s *WorkflowService) StartChargingSession(ctx context.Context, actor *models.Actor, req models.SessionRequest) (*models.ChargingSession, error) {
	if actor == nil {
		return nil, ErrNoActor
	}

	tariff, err := s.tariffs.ActiveTariff(ctx)
	if err != nil {
		return nil, fmt.Errorf("charging: resolve tariff: %w", err)
	}

	var out models.ChargingSession
	err = s.mutate(func(now time.Time) error {
		if !s.hasApprovedAllocationLocked(actor.ID) {
			return fmt.Errorf("user %s: %w", actor.ID, ErrNoAllocation)
		}
		if strings.TrimSpace(req.StationID) == "" {
			first := s.firstAllocationLocked(actor.ID)
			req.StationID = first.StationID
			if req.StationName == "" {
				req.StationName = first.StationName
			}
			if req.VehicleModel == "" {
				req.VehicleModel = first.VehicleModel
			}
			if req.VehicleRegNumber == "" {
				req.VehicleRegNumber = first.VehicleRegNumber
			}
		}
		for _, other := range s.sessions {
			if other.StationID == req.StationID && other.Status == models.SessionActive {
				return fmt.Errorf("station %s (session %s): %w", req.StationID, other.ID, ErrStationBusy)
			}
		}

		out = models.ChargingSession{
			ID:               s.newID(prefixSession, now),
			UserID:           actor.ID,
			UserName:         actor.Name,
			StationID:        req.StationID,
			StationName:      req.StationName,
			VehicleModel:     req.VehicleModel,
			VehicleRegNumber: req.VehicleRegNumber,
			StartTime:        now,
			Rate:             tariff.PricePerKWh,
			Status:           models.SessionActive,
			CreatedAt:        now,
		}
		s.sessions = append(s.sessions, out)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "session", out.ID, "start", actor.ID, out)
	s.logger.Info("charging session started",
		zap.String("session_id", out.ID),
		zap.String("user_id", actor.ID),
		zap.String("station_id", out.StationID),
		zap.Float64("rate", out.Rate),
	)
	return &out, nil
}

// StopChargingSession meters an active session and completes it. Only the session owner
// or an administrator may stop it.
func (s *WorkflowService) StopChargingSession(ctx context.Context, actor *models.Actor, id string) (*models.ChargingSession, error) {
	if actor == nil {
		return nil, ErrNoActor
	}

	var snapshot models.ChargingSession
	var err error
	s.read(func() {
		idx := s.sessionIndex(id)
		if idx < 0 {
			err = notFound("session", id)
			return
		}
		snapshot = s.sessions[idx]
	})
	if err != nil {
		return nil, err
	}
	if snapshot.UserID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("session %s: %w", id, ErrForbidden)
	}
	if snapshot.Status != models.SessionActive {
		return nil, invalidTransition("session", id, snapshot.Status, models.SessionCompleted)
	}

	end := s.now()
	energy, err := s.meter.EnergyKWh(ctx, snapshot, end)
	if err != nil {
		return nil, fmt.Errorf("charging: read meter: %w", err)
	}
	energy, amount := settle(energy, snapshot.Rate)

	var out models.ChargingSession
	err = s.mutate(func(time.Time) error {
		idx := s.sessionIndex(id)
		if idx < 0 {
			return notFound("session", id)
		}
		sess := &s.sessions[idx]
		if sess.Status != models.SessionActive {
			return invalidTransition("session", id, sess.Status, models.SessionCompleted)
		}
		sess.EnergyKWh = energy
		sess.TotalAmount = amount
		sess.EndTime = timePtr(end)
		sess.Status = models.SessionCompleted
		out = *sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "session", id, "stop", actor.ID, out)
	s.logger.Info("charging session completed",
		zap.String("session_id", id),
		zap.Float64("energy_kwh", out.EnergyKWh),
		zap.Float64("amount", out.TotalAmount),
		zap.Duration("elapsed", end.Sub(out.StartTime)),
	)
	return &out, nil
}

// CancelChargingSession abandons an active session without billing it.
func (s *WorkflowService) CancelChargingSession(ctx context.Context, actor *models.Actor, id string) (*models.ChargingSession, error) {
	if actor == nil {
		return nil, ErrNoActor
	}

	var out models.ChargingSession
	err := s.mutate(func(now time.Time) error {
		idx := s.sessionIndex(id)
		if idx < 0 {
			return notFound("session", id)
		}
		sess := &s.sessions[idx]
		if sess.UserID != actor.ID && !actor.IsAdmin() {
			return fmt.Errorf("session %s: %w", id, ErrForbidden)
		}
		if sess.Status != models.SessionActive {
			return invalidTransition("session", id, sess.Status, models.SessionCancelled)
		}
		sess.Status = models.SessionCancelled
		sess.EndTime = timePtr(now)
		out = *sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "session", id, "cancel", actor.ID, out)
	s.logger.Info("charging session cancelled", zap.String("session_id", id))
	return &out, nil
}

// Session returns one session by id.
func (s *WorkflowService) Session(id string) (*models.ChargingSession, error) {
	var out *models.ChargingSession
	s.read(func() {
		if idx := s.sessionIndex(id); idx >= 0 {
			sess := s.sessions[idx]
			out = &sess
		}
	})
	if out == nil {
		return nil, notFound("session", id)
	}
	return out, nil
}

// SessionsByUser returns the sessions of userID.
func (s *WorkflowService) SessionsByUser(userID string) []models.ChargingSession {
	return s.filterSessions(func(c models.ChargingSession) bool { return c.UserID == userID })
}

// ActiveSessions returns sessions currently charging.
func (s *WorkflowService) ActiveSessions() []models.ChargingSession {
	return s.filterSessions(func(c models.ChargingSession) bool { return c.Status == models.SessionActive })
}

func (s *WorkflowService) filterSessions(keep func(models.ChargingSession) bool) []models.ChargingSession {
	out := []models.ChargingSession{}
	s.read(func() {
		for _, c := range s.sessions {
			if keep(c) {
				out = append(out, c)
			}
		}
	})
	return out
}

func (s *WorkflowService) sessionIndex(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WorkflowService) firstAllocationLocked(userID string) models.StationAllocationRequest {
	for _, r := range s.allocations {
		if r.UserID == userID && r.Status == models.AllocationApproved {
			return r
		}
	}
	return models.StationAllocationRequest{}
}
