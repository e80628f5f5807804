package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionNotCompleted is returned when archival is attempted on a session
// that has not reached the completed state.
var ErrSessionNotCompleted = errors.New("session not completed")

// ErrCommandNotFound is returned when no install location for a
// process-backed expert's command could be resolved.
var ErrCommandNotFound = errors.New("command not found")

// ErrUnknownResolver is returned when an expert names a resolver that is not
// in the registry.
var ErrUnknownResolver = errors.New("unknown command resolver")

// ErrUnknownExpert is returned when a registry lookup misses.
var ErrUnknownExpert = errors.New("unknown expert")
