// Package meetup owns the lifecycle of a meetup session between two users:
// creation and dedup, per-party confirmation with location capture, the
// proximity check, and terminal-state resolution.
package meetup

import "errors"

// Domain errors surfaced to callers as distinct, recoverable conditions.
// Persistence failures are passed through unwrapped into this taxonomy.
var (
	// ErrInvalidRequest flags malformed input, e.g. a user requesting a
	// meetup with themselves.
	ErrInvalidRequest = errors.New("invalid meetup request")
	// ErrNotFound means the session id is unknown.
	ErrNotFound = errors.New("meetup session not found")
	// ErrForbidden means the caller is not a participant of the session.
	ErrForbidden = errors.New("not a participant of this session")
	// ErrSessionClosed means the operation was attempted against a session
	// already in a terminal state.
	ErrSessionClosed = errors.New("meetup session already closed")
)
