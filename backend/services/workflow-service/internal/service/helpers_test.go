package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"solarshare/backend/services/workflow-service/internal/models"
)

var (
	member = &models.Actor{ID: "user-001", Email: "user@solargrid.com", Name: "Sharma Residence", Role: models.RoleMember}
	owner  = &models.Actor{ID: "ev-user-001", Email: "owner@solargrid.com", Name: "John Doe", Role: models.RoleEVOwner}
	other  = &models.Actor{ID: "user-003", Email: "evowner@solargrid.com", Name: "EV Owner User", Role: models.RoleEVOwner}
	admin  = &models.Actor{ID: "admin-001", Email: "admin@solargrid.com", Name: "Admin User", Role: models.RoleAdmin}
)

type fakeDirectory map[string]models.Actor

func (d fakeDirectory) ResolveUser(_ context.Context, id string) (*models.Actor, error) {
	a, ok := d[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func newDirectory() fakeDirectory {
	return fakeDirectory{
		member.ID: *member,
		owner.ID:  *owner,
		other.ID:  *other,
		admin.ID:  *admin,
	}
}

type fakeJournal struct {
	mu     sync.Mutex
	events []JournalEvent
	err    error
}

func (j *fakeJournal) Append(_ context.Context, e JournalEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, e)
	return nil
}

func (j *fakeJournal) actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.events))
	for _, e := range j.events {
		out = append(out, e.Entity+":"+e.Action)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// useSequentialIDs makes ids predictable for the duration of a test.
func useSequentialIDs(t *testing.T) {
	t.Helper()
	original := idGenerator
	var mu sync.Mutex
	counters := map[string]int{}
	idGenerator = func(prefix string, _ time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
	t.Cleanup(func() { idGenerator = original })
}

type fixture struct {
	svc     *WorkflowService
	clock   *fakeClock
	journal *fakeJournal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	useSequentialIDs(t)
	clock := newClock()
	journal := &fakeJournal{}
	svc := NewWorkflowService(newDirectory(), NewTariffService(nil, DefaultPricePerKWh), nil,
		WithClock(clock.Now),
		WithJournal(journal),
	)
	return &fixture{svc: svc, clock: clock, journal: journal}
}

func validReservation(station string) models.ReservationRequest {
	return models.ReservationRequest{
		StationID:        station,
		StationName:      "Station " + station,
		RequestedDate:    "2025-11-05",
		RequestedTime:    "14:30",
		DurationMinutes:  120,
		VehicleModel:     "Tesla Model 3",
		VehicleRegNumber: "TM3-001",
	}
}

// grantStation creates and approves an allocation for actor.
func (f *fixture) grantStation(t *testing.T, actor *models.Actor, station string) models.StationAllocationRequest {
	t.Helper()
	req, err := f.svc.CreateStationAllocationRequest(context.Background(), actor, models.AllocationRequest{
		StationID:        station,
		StationName:      "Central Hub Station",
		VehicleModel:     "Tesla Model 3",
		VehicleRegNumber: "KA-01-AB-1234",
	})
	if err != nil {
		t.Fatalf("create allocation: %v", err)
	}
	approved, err := f.svc.ApproveStationAllocation(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("approve allocation: %v", err)
	}
	return *approved
}

// completedSession runs a session for elapsed and stops it.
func (f *fixture) completedSession(t *testing.T, actor *models.Actor, station string, elapsed time.Duration) models.ChargingSession {
	t.Helper()
	ctx := context.Background()
	sess, err := f.svc.StartChargingSession(ctx, actor, models.SessionRequest{StationID: station})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	f.clock.Advance(elapsed)
	done, err := f.svc.StopChargingSession(ctx, actor, sess.ID)
	if err != nil {
		t.Fatalf("stop session: %v", err)
	}
	return *done
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
