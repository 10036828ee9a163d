package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarshare/backend/services/workflow-service/internal/models"
)

func TestCreatePaymentCopiesSessionTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantStation(t, owner, "STATION-01")
	sess := f.completedSession(t, owner, "STATION-01", 30*time.Minute)

	p, err := f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: sess.ID})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, models.MethodQR, p.Method)
	assert.Equal(t, sess.TotalAmount, p.Amount)
	assert.Equal(t, sess.EnergyKWh, p.EnergyKWh)
	assert.Equal(t, sess.Rate, p.Rate)
	assert.Equal(t, owner.Email, p.UserEmail)
	assert.True(t, strings.HasPrefix(p.QRPayload, "UPI://pay?"))

	failed, err := f.svc.FailPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Status)

	p, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: sess.ID, Method: models.MethodCard})
	require.NoError(t, err, "a failed payment can be retried")
	assert.Empty(t, p.QRPayload)
}

func TestCreatePaymentGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantStation(t, owner, "STATION-01")

	active, err := f.svc.StartChargingSession(ctx, owner, models.SessionRequest{StationID: "STATION-01"})
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: active.ID})
	requireErrorIs(t, err, ErrInvalidTransition)

	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.StopChargingSession(ctx, owner, active.ID)
	require.NoError(t, err)

	_, err = f.svc.CreatePayment(ctx, nil, models.PaymentRequest{SessionID: active.ID})
	requireErrorIs(t, err, ErrNoActor)
	_, err = f.svc.CreatePayment(ctx, other, models.PaymentRequest{SessionID: active.ID})
	requireErrorIs(t, err, ErrForbidden)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: "CS-404"})
	requireErrorIs(t, err, ErrNotFound)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: active.ID, Method: "cash"})
	requireErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: active.ID})
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: active.ID})
	requireErrorIs(t, err, ErrConflict)
	assert.Len(t, f.svc.UserPayments(owner.ID), 1)
}

func TestCompletePaymentKeepsAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantStation(t, owner, "STATION-01")
	sess := f.completedSession(t, owner, "STATION-01", 90*time.Second)

	p, err := f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: sess.ID})
	require.NoError(t, err)
	before := *p

	f.clock.Advance(time.Minute)
	done, err := f.svc.CompletePayment(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, before.Amount, done.Amount)
	assert.Equal(t, models.PaymentCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, f.clock.Now(), *done.CompletedAt)

	done.Status = before.Status
	done.CompletedAt = nil
	assert.Equal(t, before, *done, "only status and completedAt change")

	notes := f.svc.UserNotifications(owner.ID)
	var received []models.Notification
	for _, n := range notes {
		if n.Type == models.NotificationPaymentReceived {
			received = append(received, n)
		}
	}
	require.Len(t, received, 1)
	assert.Contains(t, received[0].Message, "₹12")

	_, err = f.svc.CompletePayment(ctx, p.ID)
	requireErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.FailPayment(ctx, p.ID)
	requireErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.CompletePayment(ctx, "PAY-404")
	requireErrorIs(t, err, ErrNotFound)
}

func TestTotalEnergyCountsCompletedPaymentsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantStation(t, owner, "STATION-01")

	first := f.completedSession(t, owner, "STATION-01", 30*time.Minute)
	p1, err := f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: first.ID})
	require.NoError(t, err)
	_, err = f.svc.CompletePayment(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, f.svc.TotalEnergyFromPayments(owner.ID))

	second := f.completedSession(t, owner, "STATION-01", 90*time.Second)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, 20.0, f.svc.TotalEnergyFromPayments(owner.ID), "pending payment does not count")
	assert.Zero(t, f.svc.TotalEnergyFromPayments(other.ID))
}

func TestRevenueSummaryAndTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantStation(t, owner, "STATION-01")

	s1 := f.completedSession(t, owner, "STATION-01", 30*time.Minute)
	p1, err := f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: s1.ID})
	require.NoError(t, err)
	_, err = f.svc.CompletePayment(ctx, p1.ID)
	require.NoError(t, err)

	s2 := f.completedSession(t, owner, "STATION-01", 90*time.Second)
	_, err = f.svc.CreatePayment(ctx, owner, models.PaymentRequest{SessionID: s2.ID})
	require.NoError(t, err)

	sum := f.svc.RevenueSummary()
	assert.Equal(t, 240.0, sum.CompletedRevenue)
	assert.Equal(t, 12.0, sum.PendingRevenue)
	assert.Equal(t, 20.0, sum.EnergySoldKWh)
	assert.Equal(t, 1, sum.CompletedCount)
	assert.Equal(t, 1, sum.PendingCount)
	assert.Equal(t, 203.39, sum.NetOfGST)
	assert.Equal(t, 36.61, sum.GST)

	txs := f.svc.AdminTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, p1.ID, txs[0].PaymentID)
	assert.Equal(t, models.PaymentCompleted, txs[0].Status)
}

func TestUPIPayload(t *testing.T) {
	payload := UPIPayload(102, "CS-001")
	require.True(t, strings.HasPrefix(payload, "UPI://pay?"))

	q, err := url.ParseQuery(strings.TrimPrefix(payload, "UPI://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "solarshare@upi", q.Get("pa"))
	assert.Equal(t, "SolarShare", q.Get("pn"))
	assert.Equal(t, "102", q.Get("am"))
	assert.Equal(t, "EV Charging Payment", q.Get("tn"))
	assert.Equal(t, "CS-001", q.Get("tr"))

	q, err = url.ParseQuery(strings.TrimPrefix(UPIPayload(12.346, "CS-2"), "UPI://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", q.Get("am"))
}
