package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/password"
)

var (
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUserNotFound is returned by user repositories for unknown emails or ids.
	ErrUserNotFound = errors.New("auth: user not found")
)

// UserRepository defines the directory contract used by the service.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ActorSlot persists the signed-in actor across restarts.
type ActorSlot interface {
	Save(ctx context.Context, actor models.Actor) error
	Load(ctx context.Context) (*models.Actor, error)
	Clear(ctx context.Context) error
}

// AuthService holds the single current actor of the process.
type AuthService struct {
	repo       UserRepository
	hasher     password.Hasher
	tokenizer  *TokenService
	slot       ActorSlot
	loginDelay time.Duration
	logger     *zap.Logger

	mu      sync.RWMutex
	current *models.Actor
}

// NewAuthService builds AuthService. slot may be nil.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokenizer *TokenService, slot ActorSlot, loginDelay time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		repo:       repo,
		hasher:     hasher,
		tokenizer:  tokenizer,
		slot:       slot,
		loginDelay: loginDelay,
		logger:     logger,
	}
}

// Login authenticates against the directory, becomes the current actor and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, *models.Actor, error) {
	if s.loginDelay > 0 {
		timer := time.NewTimer(s.loginDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", nil, ctx.Err()
		case <-timer.C:
		}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, pass); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.Warn("unusable password hash", zap.String("user_id", user.ID), zap.Error(err))
		}
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	actor := user.Actor
	s.setCurrent(&actor)
	if s.slot != nil {
		if err := s.slot.Save(ctx, actor); err != nil {
			s.logger.Warn("failed to persist actor", zap.String("user_id", actor.ID), zap.Error(err))
		}
	}

	s.logger.Info("user logged in", zap.String("user_id", actor.ID), zap.String("role", string(actor.Role)))
	return token, &actor, nil
}

// Logout clears the current actor and its persisted copy.
func (s *AuthService) Logout(ctx context.Context) {
	prev := s.Current()
	s.setCurrent(nil)
	if s.slot != nil {
		if err := s.slot.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear persisted actor", zap.Error(err))
		}
	}
	if prev != nil {
		s.logger.Info("user logged out", zap.String("user_id", prev.ID))
	}
}

// Current returns a copy of the current actor, or nil.
func (s *AuthService) Current() *models.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	a := *s.current
	return &a
}

// Restore reloads the persisted actor, if any. A malformed or missing slot leaves no actor.
func (s *AuthService) Restore(ctx context.Context) *models.Actor {
	if s.slot == nil {
		return nil
	}
	actor, err := s.slot.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to restore actor", zap.Error(err))
		return nil
	}
	if actor == nil || actor.ID == "" || !actor.Role.Valid() {
		return nil
	}
	s.setCurrent(actor)
	s.logger.Info("actor restored", zap.String("user_id", actor.ID))
	return s.Current()
}

// ResolveUser looks up display identity by user id.
func (s *AuthService) ResolveUser(ctx context.Context, id string) (*models.Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	actor := user.Actor
	return &actor, nil
}

// ActorFromClaims resolves the actor a validated token speaks for.
func (s *AuthService) ActorFromClaims(ctx context.Context, claims *Claims) (*models.Actor, error) {
	if claims == nil {
		return nil, ErrNoActor
	}
	actor, err := s.ResolveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if actor.Role != claims.Role {
		return nil, ErrForbidden
	}
	return actor, nil
}

func (s *AuthService) setCurrent(actor *models.Actor) {
	s.mu.Lock()
	s.current = actor
	s.mu.Unlock()
}
