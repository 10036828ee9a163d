package service

import (
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

func demoTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// SeedDemoData loads the demo reservations, payout requests, session and payment used by
// the dashboards. It is a no-op once any of those collections holds data.
func (s *WorkflowService) SeedDemoData() {
	const day = "2006-01-02"
	const stamp = "2006-01-02T15:04:05"

	seeded := false
	_ = s.mutate(func(time.Time) error {
		if len(s.reservations) > 0 || len(s.payoutRequests) > 0 || len(s.sessions) > 0 || len(s.payments) > 0 {
			return nil
		}
		seeded = true

		s.reservations = append(s.reservations,
			models.Reservation{
				ID: "RES-001", UserID: "user-001", UserName: "Sharma Residence", UserEmail: "sharma@example.com",
				StationID: "1", StationName: "Station A", RequestedDate: "2025-11-05", RequestedTime: "14:30",
				DurationMinutes: 120, VehicleModel: "Tesla Model 3", VehicleRegNumber: "TM3-001",
				Status: models.ReservationApproved, Notes: "Approved - sufficient power available",
				CreatedAt: demoTime(day, "2025-10-31"), ApprovedAt: timePtr(demoTime(day, "2025-10-31")), ApprovedBy: "admin-001",
			},
			models.Reservation{
				ID: "RES-002", UserID: "user-002", UserName: "Patel House", UserEmail: "patel@example.com",
				StationID: "2", StationName: "Station B", RequestedDate: "2025-11-06", RequestedTime: "10:00",
				DurationMinutes: 90, VehicleModel: "Hyundai Kona", VehicleRegNumber: "HK-002",
				Status: models.ReservationPending, Notes: pendingReviewNote,
				CreatedAt: demoTime(day, "2025-10-30"),
			},
			models.Reservation{
				ID: "RES-003", UserID: "user-003", UserName: "Kumar Villa", UserEmail: "kumar@example.com",
				StationID: "3", StationName: "Station C", RequestedDate: "2025-11-05", RequestedTime: "16:00",
				DurationMinutes: 120, VehicleModel: "BMW i4", VehicleRegNumber: "BMW-001",
				Status: models.ReservationRejected, Reason: "Station under maintenance during requested time",
				CreatedAt: demoTime(day, "2025-10-29"), ApprovedAt: timePtr(demoTime(day, "2025-10-30")), ApprovedBy: "admin-001",
			},
		)

		s.payoutRequests = append(s.payoutRequests,
			models.PayoutRequest{
				ID: "PR-001", UserID: "user-001", UserName: "Sharma Residence", UserEmail: "user@solargrid.com",
				Amount: 3390, Status: models.PayoutRequestPending, CreatedAt: demoTime(day, "2024-01-15"),
			},
			models.PayoutRequest{
				ID: "PR-002", UserID: "user-002", UserName: "Patel House", UserEmail: "user2@solargrid.com",
				Amount: 2850, Status: models.PayoutRequestPending, CreatedAt: demoTime(day, "2024-01-16"),
			},
		)

		start := demoTime(stamp, "2025-01-15T09:30:00")
		end := demoTime(stamp, "2025-01-15T10:15:00")
		s.sessions = append(s.sessions, models.ChargingSession{
			ID: "CS-001", UserID: "ev-user-001", UserName: "John Doe",
			StationID: "STATION-01", StationName: "Central Hub Station",
			VehicleModel: "Tesla Model 3", VehicleRegNumber: "KA-01-AB-1234",
			StartTime: start, EndTime: timePtr(end), EnergyKWh: 8.5, Rate: 12, TotalAmount: 102,
			Status: models.SessionCompleted, CreatedAt: start,
		})
		s.payments = append(s.payments, models.Payment{
			ID: "PAY-001", SessionID: "CS-001", UserID: "ev-user-001", UserName: "John Doe", UserEmail: "john@example.com",
			Amount: 102, EnergyKWh: 8.5, Rate: 12, Method: models.MethodQR, QRPayload: UPIPayload(102, "CS-001"),
			Status: models.PaymentCompleted, CreatedAt: end, CompletedAt: timePtr(end),
		})
		return nil
	})

	if seeded {
		s.logger.Info("demo data seeded",
			zap.Int("reservations", len(s.Reservations())),
			zap.Int("payout_requests", len(s.PayoutRequests())),
		)
	}
}
