package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarshare/backend/services/workflow-service/internal/models"
)

func TestRequestPayoutResolvesRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.RequestPayoutFromAdmin(ctx, member.ID, 3390)
	require.NoError(t, err)
	assert.Equal(t, "PR-1", req.ID)
	assert.Equal(t, member.Name, req.UserName)
	assert.Equal(t, member.Email, req.UserEmail)
	assert.Equal(t, models.PayoutRequestPending, req.Status)

	_, err = f.svc.RequestPayoutFromAdmin(ctx, "ghost", 100)
	requireErrorIs(t, err, ErrNotFound)
	_, err = f.svc.RequestPayoutFromAdmin(ctx, member.ID, 0)
	requireErrorIs(t, err, ErrInvalidAmount)
	_, err = f.svc.RequestPayoutFromAdmin(ctx, member.ID, -5)
	requireErrorIs(t, err, ErrInvalidAmount)

	assert.Len(t, f.svc.PayoutRequests(), 1)
}

type failingDirectory struct{ err error }

func (d failingDirectory) ResolveUser(context.Context, string) (*models.Actor, error) {
	return nil, d.err
}

func TestRequestPayoutKeepsDirectoryFailures(t *testing.T) {
	useSequentialIDs(t)
	ctx := context.Background()

	outage := errors.New("connection refused")
	svc := NewWorkflowService(failingDirectory{err: outage}, nil, nil)
	_, err := svc.RequestPayoutFromAdmin(ctx, member.ID, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrNotFound)

	svc = NewWorkflowService(failingDirectory{err: context.Canceled}, nil, nil)
	_, err = svc.RequestPayoutFromAdmin(ctx, member.ID, 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.Empty(t, svc.PayoutRequests())
}

func TestApprovePayoutRequestNotifiesAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.RequestPayoutFromAdmin(ctx, member.ID, 3390)
	require.NoError(t, err)

	approved, err := f.svc.ApprovePayoutRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutRequestApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	notes := f.svc.UserNotifications(member.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPayoutApproved, notes[0].Type)
	assert.Equal(t, "Payout Request Approved", notes[0].Title)
	assert.Equal(t, "Your payout request of ₹3390 has been approved and will be transferred to your account.", notes[0].Message)

	_, err = f.svc.ApprovePayoutRequest(ctx, req.ID)
	requireErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.RejectPayoutRequest(ctx, req.ID, "late")
	requireErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, f.svc.PayoutRequests(), 1, "approved requests stay listed")
}

func TestRejectPayoutRequestLeavesOpenListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep, err := f.svc.RequestPayoutFromAdmin(ctx, member.ID, 3390)
	require.NoError(t, err)
	drop, err := f.svc.RequestPayoutFromAdmin(ctx, owner.ID, 2850)
	require.NoError(t, err)

	_, err = f.svc.RejectPayoutRequest(ctx, drop.ID, "")
	requireErrorIs(t, err, ErrReasonRequired)
	assert.Len(t, f.svc.PayoutRequests(), 2)

	rejected, err := f.svc.RejectPayoutRequest(ctx, drop.ID, "Insufficient pool balance")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutRequestRejected, rejected.Status)

	open := f.svc.PayoutRequests()
	require.Len(t, open, 1)
	assert.Equal(t, keep.ID, open[0].ID)

	gone := f.svc.RejectedPayoutRequests()
	require.Len(t, gone, 1)
	assert.Equal(t, drop.ID, gone[0].ID)
	assert.Equal(t, "Insufficient pool balance", gone[0].Reason)
	assert.Len(t, f.svc.UserPayoutRequests(owner.ID), 1)
	assert.Empty(t, f.svc.UserNotifications(owner.ID))

	_, err = f.svc.RejectPayoutRequest(ctx, "PR-404", "reason")
	requireErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ApprovePayoutRequest(ctx, "PR-404")
	requireErrorIs(t, err, ErrNotFound)
}

func TestDistributeRevenueProportionalShares(t *testing.T) {
	shares, err := DistributeRevenue([]models.Contribution{
		{UserID: "user-001", UserName: "Sharma Residence", EnergyKWh: 10},
		{UserID: "user-002", UserName: "Patel House", EnergyKWh: 40},
	}, 1000)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, 200.0, shares[0].PayoutAmount)
	assert.InDelta(t, 20.0, shares[0].SharePercentage, 1e-9)
	assert.Equal(t, 800.0, shares[1].PayoutAmount)
	assert.InDelta(t, 80.0, shares[1].SharePercentage, 1e-9)
}

func TestDistributeRevenueRoundsIndependently(t *testing.T) {
	shares, err := DistributeRevenue([]models.Contribution{
		{UserID: "a", EnergyKWh: 1},
		{UserID: "b", EnergyKWh: 1},
		{UserID: "c", EnergyKWh: 1},
	}, 100)
	require.NoError(t, err)

	var total float64
	for _, s := range shares {
		assert.Equal(t, 33.0, s.PayoutAmount)
		total += s.PayoutAmount
	}
	assert.Equal(t, 99.0, total, "rounded shares need not sum to the pool")

	zero, err := DistributeRevenue([]models.Contribution{{UserID: "a"}}, 100)
	require.NoError(t, err)
	assert.Zero(t, zero[0].PayoutAmount)

	_, err = DistributeRevenue([]models.Contribution{{UserID: "a", EnergyKWh: -1}}, 100)
	requireErrorIs(t, err, ErrInvalidAmount)
	_, err = DistributeRevenue(nil, -1)
	requireErrorIs(t, err, ErrInvalidAmount)
}

func TestDistributePayoutsEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	records, err := f.svc.DistributePayouts(ctx, []models.Contribution{
		{UserID: member.ID, UserName: member.Name, EnergyKWh: 10},
		{UserID: "user-002", UserName: "Patel House", EnergyKWh: 15},
		{UserID: "user-004", UserName: "Kumar Villa", EnergyKWh: 25},
	}, 1000)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, member.ID, records[0].UserID)
	assert.Equal(t, 200.0, records[0].PayoutAmount)
	for _, r := range records {
		assert.Equal(t, models.PayoutPending, r.Status)
		assert.Equal(t, f.clock.Now(), r.CreatedAt)
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, records, f.svc.PayoutRecords())

	done, err := f.svc.CompletePayoutRecord(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)

	failed, err := f.svc.FailPayoutRecord(ctx, records[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutFailed, failed.Status)

	_, err = f.svc.CompletePayoutRecord(ctx, records[0].ID)
	requireErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.CompletePayoutRecord(ctx, "PAYOUT-404")
	requireErrorIs(t, err, ErrNotFound)
}

func TestCreatePayoutBatchValidatesWholeBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePayoutBatch(context.Background(), []models.PayoutShare{
		{UserID: "user-001", PayoutAmount: 100},
		{UserID: "", PayoutAmount: 50},
	})
	requireErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.svc.PayoutRecords(), "no partial batch is stored")
}
