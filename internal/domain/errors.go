package domain

import "errors"

// Sentinel errors shared across services and repositories. Services return
// these unwrapped (or wrapped with %w) so controllers can map them to HTTP
// status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrSelfJoinForbidden = errors.New("organizers cannot join their own event")
	ErrEventEnded        = errors.New("event has already ended")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrVenueFull         = errors.New("venue is full")
)
