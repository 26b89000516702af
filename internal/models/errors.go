package models

import "errors"

var (
	// ErrNotFound is returned by stores when a record or book does not exist.
	ErrNotFound = errors.New("not found")
	// ErrContentLoad marks a book that could not be fetched, parsed or resolved.
	ErrContentLoad = errors.New("failed to load the adventure book")
	// ErrInvalidBook marks content that fails validation.
	ErrInvalidBook = errors.New("invalid book content")
	// ErrInvalidChoice marks a transition to an unknown entry.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrPersistence marks a failed progress write or delete.
	ErrPersistence = errors.New("failed to persist progress")
	// ErrTransitionInProgress is returned when a session is already transitioning.
	ErrTransitionInProgress = errors.New("transition already in progress")
	// ErrSessionNotLoaded is returned when a session is used before Load.
	ErrSessionNotLoaded = errors.New("session not loaded")
)
