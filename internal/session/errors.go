// internal/session/errors.go
//
// Sentinel errors for session operations. Handlers map these onto
// protocol-level error messages and HTTP statuses.

package session

import "errors"

var (
	// ErrSessionNotFound means the game id does not resolve to a live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionFull means both seats are already taken.
	ErrSessionFull = errors.New("session full")

	// ErrPlayerNotInSession means the player id was never seated in the session.
	ErrPlayerNotInSession = errors.New("player not in session")

	// ErrNotYourTurn means a selection arrived from the seat that does not
	// hold the current turn.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrGameCompleted means a selection arrived after both players reached
	// their word targets.
	ErrGameCompleted = errors.New("game already completed")

	// ErrWordBankEmpty means no category has any phrases to offer.
	ErrWordBankEmpty = errors.New("word bank has no usable categories")
)
