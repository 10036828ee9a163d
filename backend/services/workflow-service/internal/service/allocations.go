package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// CreateStationAllocationRequest asks for standing access to a station on behalf of the actor.
func (s *WorkflowService) CreateStationAllocationRequest(ctx context.Context, actor *models.Actor, req models.AllocationRequest) (*models.StationAllocationRequest, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if strings.TrimSpace(req.StationID) == "" {
		return nil, fmt.Errorf("station_id is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(req.VehicleModel) == "" || strings.TrimSpace(req.VehicleRegNumber) == "" {
		return nil, fmt.Errorf("vehicle model and registration are required: %w", ErrInvalidInput)
	}

	var out models.StationAllocationRequest
	_ = s.mutate(func(now time.Time) error {
		out = models.StationAllocationRequest{
			ID:               s.newID(prefixAllocation, now),
			UserID:           actor.ID,
			UserName:         actor.Name,
			UserEmail:        actor.Email,
			StationID:        req.StationID,
			StationName:      req.StationName,
			VehicleModel:     req.VehicleModel,
			VehicleRegNumber: req.VehicleRegNumber,
			Status:           models.AllocationPending,
			CreatedAt:        now,
		}
		s.allocations = append(s.allocations, out)
		return nil
	})

	s.record(ctx, "allocation", out.ID, "create", actor.ID, out)
	s.logger.Info("station allocation requested",
		zap.String("allocation_id", out.ID),
		zap.String("user_id", actor.ID),
		zap.String("station_id", out.StationID),
	)
	return &out, nil
}

// ApproveStationAllocation grants the request and notifies the requester.
func (s *WorkflowService) ApproveStationAllocation(ctx context.Context, id string) (*models.StationAllocationRequest, error) {
	var out models.StationAllocationRequest
	err := s.mutate(func(now time.Time) error {
		idx := s.allocationIndex(id)
		if idx < 0 {
			return notFound("allocation", id)
		}
		req := &s.allocations[idx]
		if req.Status != models.AllocationPending {
			return invalidTransition("allocation", id, req.Status, models.AllocationApproved)
		}
		req.Status = models.AllocationApproved
		req.ApprovedAt = timePtr(now)
		out = *req

		s.notifyLocked(now, req.UserID,
			"Station Allocation Approved",
			fmt.Sprintf("Your request for %s has been approved. You can now start charging your %s.", stationLabel(req.StationName, req.StationID), req.VehicleModel),
			models.NotificationAllocationApproved,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "allocation", id, "approve", "", out)
	s.logger.Info("station allocation approved", zap.String("allocation_id", id), zap.String("user_id", out.UserID))
	return &out, nil
}

// RejectStationAllocation denies the request. The reason is required; no notification is sent.
func (s *WorkflowService) RejectStationAllocation(ctx context.Context, id, reason string) (*models.StationAllocationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var out models.StationAllocationRequest
	err := s.mutate(func(now time.Time) error {
		idx := s.allocationIndex(id)
		if idx < 0 {
			return notFound("allocation", id)
		}
		req := &s.allocations[idx]
		if req.Status != models.AllocationPending {
			return invalidTransition("allocation", id, req.Status, models.AllocationRejected)
		}
		req.Status = models.AllocationRejected
		req.Reason = reason
		req.ApprovedAt = timePtr(now)
		out = *req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "allocation", id, "reject", "", out)
	s.logger.Info("station allocation rejected", zap.String("allocation_id", id), zap.String("reason", reason))
	return &out, nil
}

// StationAllocationRequests returns every allocation request.
func (s *WorkflowService) StationAllocationRequests() []models.StationAllocationRequest {
	return s.filterAllocations(func(models.StationAllocationRequest) bool { return true })
}

// UserAllocatedStations returns the approved allocations of userID.
func (s *WorkflowService) UserAllocatedStations(userID string) []models.StationAllocationRequest {
	return s.filterAllocations(func(r models.StationAllocationRequest) bool {
		return r.UserID == userID && r.Status == models.AllocationApproved
	})
}

func (s *WorkflowService) filterAllocations(keep func(models.StationAllocationRequest) bool) []models.StationAllocationRequest {
	out := []models.StationAllocationRequest{}
	s.read(func() {
		for _, r := range s.allocations {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}

func (s *WorkflowService) allocationIndex(id string) int {
	for i := range s.allocations {
		if s.allocations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WorkflowService) hasApprovedAllocationLocked(userID string) bool {
	for _, r := range s.allocations {
		if r.UserID == userID && r.Status == models.AllocationApproved {
			return true
		}
	}
	return false
}

func stationLabel(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}
