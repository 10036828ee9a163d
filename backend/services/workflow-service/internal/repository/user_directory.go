package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/password"
	"solarshare/backend/services/workflow-service/internal/service"
)

// DemoUser is a directory entry before its password is hashed.
type DemoUser struct {
	models.Actor
}

func capacity(kw float64) *float64 { return &kw }

// DemoUsers is the fixed demo directory.
var DemoUsers = []DemoUser{
	{models.Actor{ID: "admin-001", Email: "admin@solargrid.com", Name: "Admin User", Role: models.RoleAdmin}},
	{models.Actor{ID: "user-001", Email: "user@solargrid.com", Name: "Sharma Residence", Role: models.RoleMember,
		SolarCapacityKW: capacity(12.5), Address: "123 Solar Street, Bangalore"}},
	{models.Actor{ID: "user-002", Email: "user2@solargrid.com", Name: "Patel House", Role: models.RoleMember,
		SolarCapacityKW: capacity(11.2), Address: "456 Green Avenue, Bangalore"}},
	{models.Actor{ID: "ev-user-001", Email: "owner@solargrid.com", Name: "John Doe", Role: models.RoleEVOwner}},
	{models.Actor{ID: "user-003", Email: "evowner@solargrid.com", Name: "EV Owner User", Role: models.RoleEVOwner,
		Address: "789 Electric Road, Bangalore"}},
}

// UserDirectory is an in-memory user store keyed by email and id.
type UserDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
	byID    map[string]models.User
}

// NewUserDirectory hashes secret once and assigns it to every entry.
func NewUserDirectory(users []DemoUser, secret string, hasher password.Hasher) (*UserDirectory, error) {
	hash, err := hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("directory: hash demo password: %w", err)
	}

	d := &UserDirectory{
		byEmail: make(map[string]models.User, len(users)),
		byID:    make(map[string]models.User, len(users)),
	}
	for _, u := range users {
		if u.ID == "" || !u.Role.Valid() {
			return nil, fmt.Errorf("directory: invalid entry %q", u.Email)
		}
		user := models.User{Actor: u.Actor, PasswordHash: hash}
		user.Email = normalizeEmail(user.Email)
		d.byEmail[user.Email] = user
		d.byID[user.ID] = user
	}
	return d, nil
}

// GetByEmail fetches a user by email.
func (d *UserDirectory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return &user, nil
}

// GetByID fetches a user by id.
func (d *UserDirectory) GetByID(_ context.Context, id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.byID[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return &user, nil
}

// Users returns every actor in the directory.
func (d *UserDirectory) Users() []models.Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Actor, 0, len(d.byID))
	for _, u := range d.byID {
		out = append(out, u.Actor)
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
