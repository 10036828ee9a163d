package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
)

// ID prefixes per entity.
const (
	prefixReservation  = "RES"
	prefixAllocation   = "SAR"
	prefixSession      = "CS"
	prefixPayment      = "PAY"
	prefixPayoutReq    = "PR"
	prefixPayoutRecord = "PAYOUT"
	prefixNotification = "NOT"
)

// fallbackApprover is recorded when an approval has no actor attached.
const fallbackApprover = "admin"

var idGenerator = func(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}

// UserDirectory resolves display identity for a user id.
type UserDirectory interface {
	ResolveUser(ctx context.Context, id string) (*models.Actor, error)
}

// Journal receives every successful transition. Implementations may be remote.
type Journal interface {
	Append(ctx context.Context, event JournalEvent) error
}

// JournalEvent describes one transition.
type JournalEvent struct {
	Entity   string
	EntityID string
	Action   string
	ActorID  string
	Payload  interface{}
	At       time.Time
}

// Option customises a WorkflowService.
type Option func(*WorkflowService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *WorkflowService) { s.now = now }
}

// WithMeter replaces the fixed-rate energy meter.
func WithMeter(m Meter) Option {
	return func(s *WorkflowService) { s.meter = m }
}

// WithJournal attaches a transition journal.
func WithJournal(j Journal) Option {
	return func(s *WorkflowService) { s.journal = j }
}

// WorkflowService owns every workflow entity for the lifetime of the process.
// All mutations are serialized by mu; reads return copies in insertion order.
type WorkflowService struct {
	mu             sync.Mutex
	reservations   []models.Reservation
	allocations    []models.StationAllocationRequest
	sessions       []models.ChargingSession
	payments       []models.Payment
	payoutRequests []models.PayoutRequest
	payoutRecords  []models.PayoutRecord
	notifications  []models.Notification

	directory UserDirectory
	tariffs   *TariffService
	meter     Meter
	journal   Journal
	now       func() time.Time
	logger    *zap.Logger
}

// NewWorkflowService builds the service.
func NewWorkflowService(directory UserDirectory, tariffs *TariffService, logger *zap.Logger, opts ...Option) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tariffs == nil {
		tariffs = NewTariffService(nil, DefaultPricePerKWh)
	}
	s := &WorkflowService{
		directory: directory,
		tariffs:   tariffs,
		meter:     NewFixedRateMeter(DefaultChargerPowerKW),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WorkflowService) mutate(fn func(now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.now())
}

func (s *WorkflowService) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *WorkflowService) newID(prefix string, now time.Time) string {
	return idGenerator(prefix, now)
}

func (s *WorkflowService) record(ctx context.Context, entity, id, action, actorID string, payload interface{}) {
	if s.journal == nil {
		return
	}
	event := JournalEvent{
		Entity:   entity,
		EntityID: id,
		Action:   action,
		ActorID:  actorID,
		Payload:  payload,
		At:       s.now(),
	}
	if err := s.journal.Append(ctx, event); err != nil {
		s.logger.Warn("failed to journal transition",
			zap.String("entity", entity),
			zap.String("entity_id", id),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// notifyLocked appends a notification; callers hold mu.
func (s *WorkflowService) notifyLocked(now time.Time, userID, title, message string, typ models.NotificationType) models.Notification {
	n := models.Notification{
		ID:        s.newID(prefixNotification, now),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: now,
	}
	s.notifications = append(s.notifications, n)
	return n
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func invalidTransition(kind, id string, from interface{}, to interface{}) error {
	return fmt.Errorf("%s %s: %v -> %v: %w", kind, id, from, to, ErrInvalidTransition)
}
