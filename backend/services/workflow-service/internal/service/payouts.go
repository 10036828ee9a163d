package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// RequestPayoutFromAdmin records a member's ask for a transfer. The requester's display
// identity comes from the user directory.
func (s *WorkflowService) RequestPayoutFromAdmin(ctx context.Context, userID string, amount float64) (*models.PayoutRequest, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}
	if s.directory == nil {
		return nil, fmt.Errorf("payout: no user directory configured")
	}
	user, err := s.directory.ResolveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("payout: resolve user %s: %w", userID, err)
	}

	var out models.PayoutRequest
	_ = s.mutate(func(now time.Time) error {
		out = models.PayoutRequest{
			ID:        s.newID(prefixPayoutReq, now),
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
			Amount:    amount,
			Status:    models.PayoutRequestPending,
			CreatedAt: now,
		}
		s.payoutRequests = append(s.payoutRequests, out)
		return nil
	})

	s.record(ctx, "payout_request", out.ID, "create", userID, out)
	s.logger.Info("payout requested", zap.String("request_id", out.ID), zap.String("user_id", userID), zap.Float64("amount", amount))
	return &out, nil
}

// ApprovePayoutRequest approves a pending request and notifies the member.
func (s *WorkflowService) ApprovePayoutRequest(ctx context.Context, id string) (*models.PayoutRequest, error) {
	var out models.PayoutRequest
	err := s.mutate(func(now time.Time) error {
		idx := s.payoutRequestIndex(id)
		if idx < 0 {
			return notFound("payout request", id)
		}
		req := &s.payoutRequests[idx]
		if req.Status != models.PayoutRequestPending {
			return invalidTransition("payout request", id, req.Status, models.PayoutRequestApproved)
		}
		req.Status = models.PayoutRequestApproved
		req.ApprovedAt = timePtr(now)
		out = *req

		s.notifyLocked(now, req.UserID,
			"Payout Request Approved",
			fmt.Sprintf("Your payout request of ₹%s has been approved and will be transferred to your account.", formatAmount(req.Amount)),
			models.NotificationPayoutApproved,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payout_request", id, "approve", "", out)
	s.logger.Info("payout request approved", zap.String("request_id", id), zap.Float64("amount", out.Amount))
	return &out, nil
}

// RejectPayoutRequest rejects a pending request. The request is kept with its reason and
// drops out of PayoutRequests; RejectedPayoutRequests still lists it.
func (s *WorkflowService) RejectPayoutRequest(ctx context.Context, id, reason string) (*models.PayoutRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var out models.PayoutRequest
	err := s.mutate(func(now time.Time) error {
		idx := s.payoutRequestIndex(id)
		if idx < 0 {
			return notFound("payout request", id)
		}
		req := &s.payoutRequests[idx]
		if req.Status != models.PayoutRequestPending {
			return invalidTransition("payout request", id, req.Status, models.PayoutRequestRejected)
		}
		req.Status = models.PayoutRequestRejected
		req.Reason = reason
		req.RejectedAt = timePtr(now)
		out = *req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payout_request", id, "reject", "", out)
	s.logger.Info("payout request rejected", zap.String("request_id", id), zap.String("reason", reason))
	return &out, nil
}

// PayoutRequests returns open (pending or approved) requests.
func (s *WorkflowService) PayoutRequests() []models.PayoutRequest {
	return s.filterPayoutRequests(func(r models.PayoutRequest) bool { return r.Status != models.PayoutRequestRejected })
}

// RejectedPayoutRequests returns rejected requests with their reasons.
func (s *WorkflowService) RejectedPayoutRequests() []models.PayoutRequest {
	return s.filterPayoutRequests(func(r models.PayoutRequest) bool { return r.Status == models.PayoutRequestRejected })
}

// UserPayoutRequests returns every request of userID, rejected ones included.
func (s *WorkflowService) UserPayoutRequests(userID string) []models.PayoutRequest {
	return s.filterPayoutRequests(func(r models.PayoutRequest) bool { return r.UserID == userID })
}

// CreatePayoutBatch stamps and stores a precomputed distribution in one update.
func (s *WorkflowService) CreatePayoutBatch(ctx context.Context, shares []models.PayoutShare) ([]models.PayoutRecord, error) {
	for i, sh := range shares {
		if strings.TrimSpace(sh.UserID) == "" {
			return nil, fmt.Errorf("batch entry %d: user_id is required: %w", i, ErrInvalidInput)
		}
		if sh.PayoutAmount < 0 || sh.TotalEnergyShared < 0 {
			return nil, fmt.Errorf("batch entry %d: %w", i, ErrInvalidAmount)
		}
	}

	out := make([]models.PayoutRecord, 0, len(shares))
	_ = s.mutate(func(now time.Time) error {
		for _, sh := range shares {
			out = append(out, models.PayoutRecord{
				ID:                s.newID(prefixPayoutRecord, now),
				UserID:            sh.UserID,
				UserName:          sh.UserName,
				TotalEnergyShared: sh.TotalEnergyShared,
				SharePercentage:   sh.SharePercentage,
				PayoutAmount:      sh.PayoutAmount,
				Status:            models.PayoutPending,
				CreatedAt:         now,
			})
		}
		s.payoutRecords = append(s.payoutRecords, out...)
		return nil
	})

	for _, rec := range out {
		s.record(ctx, "payout_record", rec.ID, "create", "", rec)
	}
	s.logger.Info("payout batch created", zap.Int("records", len(out)))
	return out, nil
}

// DistributePayouts divides revenuePool by energy contribution and stores the batch.
func (s *WorkflowService) DistributePayouts(ctx context.Context, contributions []models.Contribution, revenuePool float64) ([]models.PayoutRecord, error) {
	shares, err := DistributeRevenue(contributions, revenuePool)
	if err != nil {
		return nil, err
	}
	return s.CreatePayoutBatch(ctx, shares)
}

// CompletePayoutRecord marks one pending payout as paid.
func (s *WorkflowService) CompletePayoutRecord(ctx context.Context, id string) (*models.PayoutRecord, error) {
	return s.settlePayoutRecord(ctx, id, models.PayoutCompleted)
}

// FailPayoutRecord marks one pending payout as failed.
func (s *WorkflowService) FailPayoutRecord(ctx context.Context, id string) (*models.PayoutRecord, error) {
	return s.settlePayoutRecord(ctx, id, models.PayoutFailed)
}

func (s *WorkflowService) settlePayoutRecord(ctx context.Context, id string, to models.PayoutStatus) (*models.PayoutRecord, error) {
	var out models.PayoutRecord
	err := s.mutate(func(now time.Time) error {
		idx := s.payoutRecordIndex(id)
		if idx < 0 {
			return notFound("payout record", id)
		}
		rec := &s.payoutRecords[idx]
		if rec.Status != models.PayoutPending {
			return invalidTransition("payout record", id, rec.Status, to)
		}
		rec.Status = to
		rec.ProcessedAt = timePtr(now)
		out = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "payout_record", id, string(to), "", out)
	s.logger.Info("payout record settled", zap.String("payout_id", id), zap.String("status", string(to)))
	return &out, nil
}

// PayoutRecords returns every payout record.
func (s *WorkflowService) PayoutRecords() []models.PayoutRecord {
	out := []models.PayoutRecord{}
	s.read(func() {
		out = append(out, s.payoutRecords...)
	})
	return out
}

// DistributeRevenue computes each member's share of revenuePool proportionally to
// contributed energy: share% = energy/total*100, payout = round(energy/total*pool).
// Independently rounded payouts may not sum exactly to the pool.
func DistributeRevenue(contributions []models.Contribution, revenuePool float64) ([]models.PayoutShare, error) {
	if revenuePool < 0 {
		return nil, ErrInvalidAmount
	}
	var total float64
	for _, c := range contributions {
		if c.EnergyKWh < 0 {
			return nil, fmt.Errorf("contribution of %s: %w", c.UserID, ErrInvalidAmount)
		}
		total += c.EnergyKWh
	}

	shares := make([]models.PayoutShare, 0, len(contributions))
	for _, c := range contributions {
		var fraction float64
		if total > 0 {
			fraction = c.EnergyKWh / total
		}
		shares = append(shares, models.PayoutShare{
			UserID:            c.UserID,
			UserName:          c.UserName,
			TotalEnergyShared: c.EnergyKWh,
			SharePercentage:   fraction * 100,
			PayoutAmount:      math.Round(fraction * revenuePool),
		})
	}
	return shares, nil
}

func (s *WorkflowService) filterPayoutRequests(keep func(models.PayoutRequest) bool) []models.PayoutRequest {
	out := []models.PayoutRequest{}
	s.read(func() {
		for _, r := range s.payoutRequests {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}

func (s *WorkflowService) payoutRequestIndex(id string) int {
	for i := range s.payoutRequests {
		if s.payoutRequests[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *WorkflowService) payoutRecordIndex(id string) int {
	for i := range s.payoutRecords {
		if s.payoutRecords[i].ID == id {
			return i
		}
	}
	return -1
}
