// internal/letter/errors.go
//
// Sentinel errors for letter generation and lookup.

package letter

import "errors"

var (
	// ErrInvalidInput means the word lists do not satisfy the exact
	// five-words-per-player requirement.
	ErrInvalidInput = errors.New("player 1 and player 2 must each have 5 words")

	// ErrQualityCheck means the model returned text that fails the
	// structural sanity check; it is never handed to clients.
	ErrQualityCheck = errors.New("generated letter does not meet quality requirements")

	// ErrLetterNotFound means no cached or archived letter exists for the game.
	ErrLetterNotFound = errors.New("love letter not found for this game")
)
