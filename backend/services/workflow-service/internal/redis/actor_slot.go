package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"solarshare/backend/services/workflow-service/internal/models"
)

const actorKey = "workflow:actor:current"

// ActorSlot keeps the signed-in actor in redis so a restart can restore it.
type ActorSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewActorSlot returns redis-backed slot. A zero ttl keeps the entry until logout.
func NewActorSlot(client *redis.Client, ttl time.Duration) *ActorSlot {
	return &ActorSlot{client: client, ttl: ttl}
}

// Save stores the actor.
func (s *ActorSlot) Save(ctx context.Context, actor models.Actor) error {
	data, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, actorKey, data, s.ttl).Err()
}

// Load returns the stored actor, or nil when the slot is empty.
func (s *ActorSlot) Load(ctx context.Context) (*models.Actor, error) {
	result, err := s.client.Get(ctx, actorKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var actor models.Actor
	if err := json.Unmarshal([]byte(result), &actor); err != nil {
		return nil, err
	}
	return &actor, nil
}

// Clear removes the stored actor.
func (s *ActorSlot) Clear(ctx context.Context) error {
	return s.client.Del(ctx, actorKey).Err()
}
