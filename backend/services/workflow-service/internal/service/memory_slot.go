package service

import (
	"context"
	"sync"

	"solarshare/backend/services/workflow-service/internal/models"
)

// MemorySlot is an ActorSlot kept in process memory.
type MemorySlot struct {
	mu    sync.Mutex
	actor *models.Actor
}

// NewMemorySlot returns an empty slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Save stores a copy of actor.
func (m *MemorySlot) Save(_ context.Context, actor models.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = &actor
	return nil
}

// Load returns the stored actor, or nil.
func (m *MemorySlot) Load(_ context.Context) (*models.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actor == nil {
		return nil, nil
	}
	a := *m.actor
	return &a, nil
}

// Clear empties the slot.
func (m *MemorySlot) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = nil
	return nil
}
