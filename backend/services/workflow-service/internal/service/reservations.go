package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

const (
	reservationDateLayout = "2006-01-02 15:04"
	pendingReviewNote     = "Waiting for admin review"
)

// CreateReservation records a pending reservation for the actor.
func (s *WorkflowService) CreateReservation(ctx context.Context, actor *models.Actor, req models.ReservationRequest) (*models.Reservation, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if err := validateReservationRequest(req); err != nil {
		return nil, err
	}

	var out models.Reservation
	_ = s.mutate(func(now time.Time) error {
		out = models.Reservation{
			ID:               s.newID(prefixReservation, now),
			UserID:           actor.ID,
			UserName:         actor.Name,
			UserEmail:        actor.Email,
			StationID:        req.StationID,
			StationName:      req.StationName,
			RequestedDate:    req.RequestedDate,
			RequestedTime:    req.RequestedTime,
			DurationMinutes:  req.DurationMinutes,
			VehicleModel:     req.VehicleModel,
			VehicleRegNumber: req.VehicleRegNumber,
			Status:           models.ReservationPending,
			Notes:            pendingReviewNote,
			CreatedAt:        now,
		}
		s.reservations = append(s.reservations, out)
		return nil
	})

	s.record(ctx, "reservation", out.ID, "create", actor.ID, out)
	s.logger.Info("reservation created",
		zap.String("reservation_id", out.ID),
		zap.String("user_id", actor.ID),
		zap.String("station_id", out.StationID),
	)
	return &out, nil
}

// ApproveReservation moves a pending reservation to approved. Empty notes keep the
// existing notes. A nil actor is recorded as the fallback approver.
func (s *WorkflowService) ApproveReservation(ctx context.Context, actor *models.Actor, id, notes string) (*models.Reservation, error) {
	approver := fallbackApprover
	if actor != nil {
		approver = actor.ID
	}

	var out models.Reservation
	err := s.mutate(func(now time.Time) error {
		idx := s.reservationIndex(id)
		if idx < 0 {
			return notFound("reservation", id)
		}
		res := &s.reservations[idx]
		if res.Status != models.ReservationPending {
			return invalidTransition("reservation", id, res.Status, models.ReservationApproved)
		}
		if clash := s.overlappingApprovedLocked(*res); clash != "" {
			return fmt.Errorf("reservation %s overlaps approved reservation %s: %w", id, clash, ErrConflict)
		}
		res.Status = models.ReservationApproved
		res.ApprovedAt = timePtr(now)
		res.ApprovedBy = approver
		if strings.TrimSpace(notes) != "" {
			res.Notes = notes
		}
		out = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation", id, "approve", approver, out)
	s.logger.Info("reservation approved", zap.String("reservation_id", id), zap.String("approved_by", approver))
	return &out, nil
}

// RejectReservation moves a pending reservation to rejected. The reason is required.
func (s *WorkflowService) RejectReservation(ctx context.Context, actor *models.Actor, id, reason string) (*models.Reservation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	approver := fallbackApprover
	if actor != nil {
		approver = actor.ID
	}

	var out models.Reservation
	err := s.mutate(func(now time.Time) error {
		idx := s.reservationIndex(id)
		if idx < 0 {
			return notFound("reservation", id)
		}
		res := &s.reservations[idx]
		if res.Status != models.ReservationPending {
			return invalidTransition("reservation", id, res.Status, models.ReservationRejected)
		}
		res.Status = models.ReservationRejected
		res.Reason = reason
		res.ApprovedAt = timePtr(now)
		res.ApprovedBy = approver
		out = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation", id, "reject", approver, out)
	s.logger.Info("reservation rejected", zap.String("reservation_id", id), zap.String("reason", reason))
	return &out, nil
}

// CancelReservation lets the requester withdraw a pending or approved reservation.
func (s *WorkflowService) CancelReservation(ctx context.Context, actor *models.Actor, id string) (*models.Reservation, error) {
	if actor == nil {
		return nil, ErrNoActor
	}

	var out models.Reservation
	err := s.mutate(func(time.Time) error {
		idx := s.reservationIndex(id)
		if idx < 0 {
			return notFound("reservation", id)
		}
		res := &s.reservations[idx]
		if res.UserID != actor.ID {
			return fmt.Errorf("reservation %s: %w", id, ErrForbidden)
		}
		if res.Status.Terminal() {
			return invalidTransition("reservation", id, res.Status, models.ReservationCancelled)
		}
		res.Status = models.ReservationCancelled
		out = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation", id, "cancel", actor.ID, out)
	s.logger.Info("reservation cancelled", zap.String("reservation_id", id), zap.String("user_id", actor.ID))
	return &out, nil
}

// CompleteReservation marks an approved reservation as used.
func (s *WorkflowService) CompleteReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var out models.Reservation
	err := s.mutate(func(time.Time) error {
		idx := s.reservationIndex(id)
		if idx < 0 {
			return notFound("reservation", id)
		}
		res := &s.reservations[idx]
		if res.Status != models.ReservationApproved {
			return invalidTransition("reservation", id, res.Status, models.ReservationCompleted)
		}
		res.Status = models.ReservationCompleted
		out = *res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation", id, "complete", "", out)
	s.logger.Info("reservation completed", zap.String("reservation_id", id))
	return &out, nil
}

// Reservations returns every reservation.
func (s *WorkflowService) Reservations() []models.Reservation {
	return s.filterReservations(func(models.Reservation) bool { return true })
}

// UserReservations returns the reservations requested by userID.
func (s *WorkflowService) UserReservations(userID string) []models.Reservation {
	return s.filterReservations(func(r models.Reservation) bool { return r.UserID == userID })
}

// PendingReservations returns reservations awaiting review.
func (s *WorkflowService) PendingReservations() []models.Reservation {
	return s.filterReservations(func(r models.Reservation) bool { return r.Status == models.ReservationPending })
}

func (s *WorkflowService) filterReservations(keep func(models.Reservation) bool) []models.Reservation {
	out := []models.Reservation{}
	s.read(func() {
		for _, r := range s.reservations {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}

func (s *WorkflowService) reservationIndex(id string) int {
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			return i
		}
	}
	return -1
}

// overlappingApprovedLocked returns the id of an approved reservation on the same
// station whose slot intersects res, or "".
func (s *WorkflowService) overlappingApprovedLocked(res models.Reservation) string {
	start, end, err := reservationWindow(res.RequestedDate, res.RequestedTime, res.DurationMinutes)
	if err != nil {
		return ""
	}
	for _, other := range s.reservations {
		if other.ID == res.ID || other.StationID != res.StationID || other.Status != models.ReservationApproved {
			continue
		}
		oStart, oEnd, err := reservationWindow(other.RequestedDate, other.RequestedTime, other.DurationMinutes)
		if err != nil {
			continue
		}
		if start.Before(oEnd) && oStart.Before(end) {
			return other.ID
		}
	}
	return ""
}

func reservationWindow(date, clock string, minutes int) (time.Time, time.Time, error) {
	start, err := time.Parse(reservationDateLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(time.Duration(minutes) * time.Minute), nil
}

func validateReservationRequest(req models.ReservationRequest) error {
	if strings.TrimSpace(req.StationID) == "" {
		return fmt.Errorf("station_id is required: %w", ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive: %w", ErrInvalidInput)
	}
	if _, _, err := reservationWindow(req.RequestedDate, req.RequestedTime, req.DurationMinutes); err != nil {
		return fmt.Errorf("requested date/time must be YYYY-MM-DD and HH:MM: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(req.VehicleRegNumber) == "" {
		return fmt.Errorf("vehicle_reg_number is required: %w", ErrInvalidInput)
	}
	return nil
}
