package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarshare/backend/services/workflow-service/internal/models"
)

func TestApproveStationAllocationNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.CreateStationAllocationRequest(ctx, owner, models.AllocationRequest{
		StationID:        "STATION-01",
		StationName:      "Central Hub Station",
		VehicleModel:     "Tesla Model 3",
		VehicleRegNumber: "KA-01-AB-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AllocationPending, req.Status)
	assert.Empty(t, f.svc.UserAllocatedStations(owner.ID))

	approved, err := f.svc.ApproveStationAllocation(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AllocationApproved, approved.Status)

	stations := f.svc.UserAllocatedStations(owner.ID)
	require.Len(t, stations, 1)
	assert.Equal(t, req.ID, stations[0].ID)

	notes := f.svc.UserNotifications(owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationAllocationApproved, notes[0].Type)
	assert.Equal(t, "Station Allocation Approved", notes[0].Title)
	assert.Contains(t, notes[0].Message, "Central Hub Station")
	assert.False(t, notes[0].Read)

	_, err = f.svc.ApproveStationAllocation(ctx, req.ID)
	requireErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, f.svc.UserNotifications(owner.ID), 1)
}

func TestRejectStationAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.CreateStationAllocationRequest(ctx, owner, models.AllocationRequest{
		StationID: "STATION-02", VehicleModel: "BMW i4", VehicleRegNumber: "BMW-001",
	})
	require.NoError(t, err)

	_, err = f.svc.RejectStationAllocation(ctx, req.ID, "")
	requireErrorIs(t, err, ErrReasonRequired)

	rejected, err := f.svc.RejectStationAllocation(ctx, req.ID, "Station reserved for fleet")
	require.NoError(t, err)
	assert.Equal(t, models.AllocationRejected, rejected.Status)
	assert.Equal(t, "Station reserved for fleet", rejected.Reason)

	assert.Empty(t, f.svc.UserNotifications(owner.ID), "rejection sends no notification")
	assert.Empty(t, f.svc.UserAllocatedStations(owner.ID))
	assert.Len(t, f.svc.StationAllocationRequests(), 1)

	_, err = f.svc.ApproveStationAllocation(ctx, req.ID)
	requireErrorIs(t, err, ErrInvalidTransition)
}

func TestStationAllocationValidationAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateStationAllocationRequest(ctx, nil, models.AllocationRequest{StationID: "S"})
	requireErrorIs(t, err, ErrNoActor)
	_, err = f.svc.CreateStationAllocationRequest(ctx, owner, models.AllocationRequest{VehicleModel: "X", VehicleRegNumber: "Y"})
	requireErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.CreateStationAllocationRequest(ctx, owner, models.AllocationRequest{StationID: "S"})
	requireErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ApproveStationAllocation(ctx, "SAR-404")
	requireErrorIs(t, err, ErrNotFound)
	_, err = f.svc.RejectStationAllocation(ctx, "SAR-404", "reason")
	requireErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.svc.StationAllocationRequests())
}
