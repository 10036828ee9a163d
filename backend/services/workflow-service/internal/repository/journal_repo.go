package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"solarshare/backend/services/workflow-service/internal/service"
)

// JournalRepository appends workflow transitions to workflow_events.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository returns repository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// EnsureSchema creates the events table if missing.
func (r *JournalRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS workflow_events (
			id          BIGSERIAL PRIMARY KEY,
			entity      TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			action      TEXT NOT NULL,
			actor_id    TEXT NOT NULL DEFAULT '',
			payload     JSONB NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)
	`
	_, err := r.pool.Exec(ctx, ddl)
	return err
}

// Append inserts one event.
func (r *JournalRepository) Append(ctx context.Context, event service.JournalEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("journal: encode payload: %w", err)
	}
	const query = `
		INSERT INTO workflow_events (entity, entity_id, action, actor_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query, event.Entity, event.EntityID, event.Action, event.ActorID, payload, event.At)
	return err
}
