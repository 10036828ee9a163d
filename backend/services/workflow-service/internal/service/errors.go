package service

import "errors"

var (
	// ErrNotFound is returned when an id matches no entity. The store is left unchanged.
	ErrNotFound = errors.New("workflow: not found")
	// ErrNoActor is returned when an operation needs a signed-in actor.
	ErrNoActor = errors.New("workflow: no active actor")
	// ErrForbidden is returned when the actor does not own the entity.
	ErrForbidden = errors.New("workflow: forbidden")
	// ErrInvalidTransition is returned when the current status does not allow the change.
	ErrInvalidTransition = errors.New("workflow: invalid status transition")
	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("workflow: reason is required")
	// ErrInvalidAmount is returned for non-positive money or energy figures.
	ErrInvalidAmount = errors.New("workflow: amount must be positive")
	// ErrInvalidInput is returned when required request fields are missing or malformed.
	ErrInvalidInput = errors.New("workflow: invalid input")
	// ErrNoAllocation is returned when a session is started without an approved allocation.
	ErrNoAllocation = errors.New("workflow: no approved station allocation")
	// ErrStationBusy is returned when the station already has an active session.
	ErrStationBusy = errors.New("workflow: station already has an active session")
	// ErrConflict is returned when the change collides with existing state.
	ErrConflict = errors.New("workflow: conflict")
)
