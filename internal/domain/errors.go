package domain

import "errors"

var (
	// ErrInvalidInput marks malformed arguments: a negative shuffle size or an
	// answer index outside [0,3] that is not the timeout sentinel. Always a
	// contract bug in the caller; never coerced silently.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFinished is returned when an attempt is recorded for a
	// session that is still active.
	ErrSessionNotFinished = errors.New("session not finished")
	// ErrAlreadyRecorded guards against a finished session being persisted twice.
	ErrAlreadyRecorded = errors.New("attempt already recorded")
	// ErrRoomNotFound indicates the room or quiz content could not be loaded.
	ErrRoomNotFound = errors.New("room not found")
	// ErrStoreUnavailable wraps failures of the attempt store. Callers degrade
	// (unsaved attempt, empty leaderboard) instead of failing the session.
	ErrStoreUnavailable = errors.New("result store unavailable")
)
