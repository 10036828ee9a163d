package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// GSTRate is the goods and services tax included in charging revenue.
const GSTRate = 0.18

const (
	upiPayee     = "solarshare@upi"
	upiPayeeName = "SolarShare"
	upiNote      = "EV Charging Payment"
)

// CreatePayment opens a pending payment for a completed session owned by the actor.
// Amount, energy and rate are copied from the session so the payment always matches it.
func (s *WorkflowService) CreatePayment(ctx context.Context, actor *models.Actor, req models.PaymentRequest) (*models.Payment, error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	if req.Method == "" {
		req.Method = models.MethodQR
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", req.Method, ErrInvalidInput)
	}

	var out models.Payment
	err := s.mutate(func(now time.Time) error {
		idx := s.sessionIndex(req.SessionID)
		if idx < 0 {
			return notFound("session", req.SessionID)
		}
		sess := s.sessions[idx]
		if sess.UserID != actor.ID {
			return fmt.Errorf("session %s: %w", sess.ID, ErrForbidden)
		}
		if sess.Status != models.SessionCompleted {
			return fmt.Errorf("session %s is %s, not completed: %w", sess.ID, sess.Status, ErrInvalidTransition)
		}
		if sess.TotalAmount <= 0 {
			return fmt.Errorf("session %s: %w", sess.ID, ErrInvalidAmount)
		}
		for _, p := range s.payments {
			if p.SessionID == sess.ID && p.Status != models.PaymentFailed {
				return fmt.Errorf("session %s already has payment %s: %w", sess.ID, p.ID, ErrConflict)
			}
		}

		out = models.Payment{
			ID:        s.newID(prefixPayment, now),
			SessionID: sess.ID,
			UserID:    actor.ID,
			UserName:  actor.Name,
			UserEmail: actor.Email,
			Amount:    sess.TotalAmount,
			EnergyKWh: sess.EnergyKWh,
			Rate:      sess.Rate,
			Method:    req.Method,
			Status:    models.PaymentPending,
			CreatedAt: now,
		}
		if req.Method != models.MethodCard {
			out.QRPayload = UPIPayload(out.Amount, sess.ID)
		}
		s.payments = append(s.payments, out)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payment", out.ID, "create", actor.ID, out)
	s.logger.Info("payment created",
		zap.String("payment_id", out.ID),
		zap.String("session_id", out.SessionID),
		zap.Float64("amount", out.Amount),
		zap.String("method", string(out.Method)),
	)
	return &out, nil
}

// CompletePayment settles a pending payment and notifies the payer. Amount never changes.
func (s *WorkflowService) CompletePayment(ctx context.Context, id string) (*models.Payment, error) {
	var out models.Payment
	err := s.mutate(func(now time.Time) error {
		idx := s.paymentIndex(id)
		if idx < 0 {
			return notFound("payment", id)
		}
		p := &s.payments[idx]
		if p.Status != models.PaymentPending {
			return invalidTransition("payment", id, p.Status, models.PaymentCompleted)
		}
		p.Status = models.PaymentCompleted
		p.CompletedAt = timePtr(now)
		out = *p

		s.notifyLocked(now, p.UserID,
			"Payment Received",
			fmt.Sprintf("Your payment of ₹%s for charging session %s has been received.", formatAmount(p.Amount), p.SessionID),
			models.NotificationPaymentReceived,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payment", id, "complete", out.UserID, out)
	s.logger.Info("payment completed", zap.String("payment_id", id), zap.Float64("amount", out.Amount))
	return &out, nil
}

// FailPayment marks a pending payment as failed so the session can be paid again.
func (s *WorkflowService) FailPayment(ctx context.Context, id string) (*models.Payment, error) {
	var out models.Payment
	err := s.mutate(func(time.Time) error {
		idx := s.paymentIndex(id)
		if idx < 0 {
			return notFound("payment", id)
		}
		p := &s.payments[idx]
		if p.Status != models.PaymentPending {
			return invalidTransition("payment", id, p.Status, models.PaymentFailed)
		}
		p.Status = models.PaymentFailed
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payment", id, "fail", out.UserID, out)
	s.logger.Info("payment failed", zap.String("payment_id", id))
	return &out, nil
}

// UserPayments returns the payments made by userID.
func (s *WorkflowService) UserPayments(userID string) []models.Payment {
	return s.filterPayments(func(p models.Payment) bool { return p.UserID == userID })
}

// Payments returns every payment.
func (s *WorkflowService) Payments() []models.Payment {
	return s.filterPayments(func(models.Payment) bool { return true })
}

// TotalEnergyFromPayments sums energy over the completed payments of userID.
func (s *WorkflowService) TotalEnergyFromPayments(userID string) float64 {
	var total float64
	for _, p := range s.UserPayments(userID) {
		if p.Status == models.PaymentCompleted {
			total += p.EnergyKWh
		}
	}
	return total
}

// AdminTransactions returns the admin listing of all payments.
func (s *WorkflowService) AdminTransactions() []models.AdminTransaction {
	payments := s.Payments()
	out := make([]models.AdminTransaction, 0, len(payments))
	for _, p := range payments {
		out = append(out, models.AdminTransaction{
			PaymentID:   p.ID,
			SessionID:   p.SessionID,
			UserID:      p.UserID,
			UserName:    p.UserName,
			EnergyKWh:   p.EnergyKWh,
			Amount:      p.Amount,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
			CompletedAt: p.CompletedAt,
		})
	}
	return out
}

// RevenueSummary aggregates payments. Completed revenue is GST inclusive.
func (s *WorkflowService) RevenueSummary() models.RevenueSummary {
	var sum models.RevenueSummary
	for _, p := range s.Payments() {
		switch p.Status {
		case models.PaymentCompleted:
			sum.CompletedRevenue += p.Amount
			sum.EnergySoldKWh += p.EnergyKWh
			sum.CompletedCount++
		case models.PaymentPending:
			sum.PendingRevenue += p.Amount
			sum.PendingCount++
		}
	}
	sum.CompletedRevenue = roundTo(sum.CompletedRevenue, 2)
	sum.PendingRevenue = roundTo(sum.PendingRevenue, 2)
	sum.EnergySoldKWh = roundTo(sum.EnergySoldKWh, 3)
	sum.NetOfGST = roundTo(sum.CompletedRevenue/(1+GSTRate), 2)
	sum.GST = roundTo(sum.CompletedRevenue-sum.NetOfGST, 2)
	return sum
}

// UPIPayload builds the UPI deep link encoded into the payment QR code.
func UPIPayload(amount float64, sessionID string) string {
	q := url.Values{}
	q.Set("pa", upiPayee)
	q.Set("pn", upiPayeeName)
	q.Set("am", formatAmount(amount))
	q.Set("tn", upiNote)
	q.Set("tr", sessionID)
	return "UPI://pay?" + q.Encode()
}

func (s *WorkflowService) filterPayments(keep func(models.Payment) bool) []models.Payment {
	out := []models.Payment{}
	s.read(func() {
		for _, p := range s.payments {
			if keep(p) {
				out = append(out, p)
			}
		}
	})
	return out
}

func (s *WorkflowService) paymentIndex(id string) int {
	for i := range s.payments {
		if s.payments[i].ID == id {
			return i
		}
	}
	return -1
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64)
}
