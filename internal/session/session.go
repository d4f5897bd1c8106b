// internal/session/session.go
//
// Core state machine for a single two-player letter-building game.
// Responsibilities:
//   - Seat players in join order (first seat is the creator).
//   - Enforce strict turn alternation and the per-player word target.
//   - Rotate the offered word options through the fixed category sequence.
//   - Flip the completion flag exactly once and guard letter generation
//     against duplicate triggers.
//
// Notes:
//   - Players are keyed by a stable player id, not by the underlying
//     connection; the gateway owns the connection ↔ player binding.
//   - Every mutation runs under the session mutex, so each transition is an
//     atomic read-compute-write step.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/loveletter-builder/go-server/internal/wordbank"
)

const (
	// MaxPlayers is the seat capacity of a session.
	MaxPlayers = 2

	// WordTarget is the number of words each player must select. Applied
	// identically everywhere completion is checked.
	WordTarget = 5

	// OptionCount is the number of candidate phrases offered per turn.
	OptionCount = 4
)

// Turn identifies which seat may select the next word.
type Turn string

const (
	TurnPlayer1 Turn = "player1"
	TurnPlayer2 Turn = "player2"
)

// Player is one seated participant.
type Player struct {
	ID        string `json:"id"`
	IsCreator bool   `json:"isCreator"`
	Connected bool   `json:"connected"`
}

// SessionView is the snapshot of session state broadcast to clients.
type SessionView struct {
	GameID          string   `json:"gameId"`
	Players         []Player `json:"players"`
	Player1Words    []string `json:"player1Words"`
	Player2Words    []string `json:"player2Words"`
	CurrentTurn     Turn     `json:"currentTurn"`
	CurrentPlayerID string   `json:"currentPlayerId"`
	CurrentOptions  []string `json:"currentOptions"`
	Completed       bool     `json:"completed"`
	GeneratedLetter string   `json:"loveLetter,omitempty"`
	Generating      bool     `json:"generating"`
}

// Session holds the state of one game room. All exported methods are safe for
// concurrent use; state is owned by the registry that created the session.
type Session struct {
	mu sync.Mutex

	id              string
	players         []Player
	player1Words    []string
	player2Words    []string
	currentTurn     Turn
	currentOptions  []string
	completed       bool
	generatedLetter string
	generating      bool
	createdAt       time.Time
}

// New creates a session with the creator seated as player 1 and an initial
// option set drawn from a random non-empty category.
// Fails only when the word bank has nothing to offer.
func New(creatorID string) (*Session, error) {
	opts, err := initialOptions()
	if err != nil {
		return nil, err
	}
	return &Session{
		id:             randomID(),
		players:        []Player{{ID: creatorID, IsCreator: true, Connected: true}},
		player1Words:   []string{},
		player2Words:   []string{},
		currentTurn:    TurnPlayer1,
		currentOptions: opts,
		createdAt:      time.Now(),
	}, nil
}

// initialOptions draws the opening option set from a random category.
func initialOptions() ([]string, error) {
	category, ok := wordbank.RandomCategory()
	if !ok {
		return nil, ErrWordBankEmpty
	}
	return wordbank.Options(category, OptionCount), nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the creation timestamp (informational only).
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Join seats the player in the second seat. Joining again with an already
// seated id is idempotent and just reconnects the seat.
func (s *Session) Join(playerID string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seat := s.seatOf(playerID); seat >= 0 {
		s.players[seat].Connected = true
		return s.view(), nil
	}
	if len(s.players) >= MaxPlayers {
		return SessionView{}, ErrSessionFull
	}
	s.players = append(s.players, Player{ID: playerID, Connected: true})
	return s.view(), nil
}

// Rejoin reattaches a previously seated player after a transient disconnect.
// Seat assignment is never altered.
func (s *Session) Rejoin(playerID string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat := s.seatOf(playerID)
	if seat < 0 {
		return SessionView{}, ErrPlayerNotInSession
	}
	s.players[seat].Connected = true
	return s.view(), nil
}

// SelectWord appends the word to the acting player's list, toggles the turn,
// and recomputes the offered options from the next rotation category.
// justCompleted is true only on the single transition into the completed state;
// the caller uses it to trigger letter generation exactly once.
func (s *Session) SelectWord(playerID, word string) (view SessionView, justCompleted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat := s.seatOf(playerID)
	if seat < 0 {
		return SessionView{}, false, ErrPlayerNotInSession
	}
	if s.completed {
		return SessionView{}, false, ErrGameCompleted
	}
	if turnOf(seat) != s.currentTurn {
		return SessionView{}, false, ErrNotYourTurn
	}

	if seat == 0 {
		s.player1Words = append(s.player1Words, word)
		s.currentTurn = TurnPlayer2
	} else {
		s.player2Words = append(s.player2Words, word)
		s.currentTurn = TurnPlayer1
	}

	if len(s.player1Words) >= WordTarget && len(s.player2Words) >= WordTarget {
		s.completed = true
		s.currentOptions = []string{}
		return s.view(), true, nil
	}

	total := len(s.player1Words) + len(s.player2Words)
	s.currentOptions = wordbank.Options(wordbank.CategoryAt(total), OptionCount)
	return s.view(), false, nil
}

// Reset clears both word lists, the completion flag, and the cached letter,
// and returns the session to player 1's turn with a fresh option set.
func (s *Session) Reset() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts, err := initialOptions()
	if err != nil {
		return SessionView{}, err
	}
	s.player1Words = []string{}
	s.player2Words = []string{}
	s.currentTurn = TurnPlayer1
	s.currentOptions = opts
	s.completed = false
	s.generatedLetter = ""
	s.generating = false
	return s.view(), nil
}

// MarkDisconnected flags the player's seat as detached. The seat itself is
// retained so the player can rejoin with their session token.
// empty is true when no seat has a live connection left.
func (s *Session) MarkDisconnected(playerID string) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seat := s.seatOf(playerID); seat >= 0 {
		s.players[seat].Connected = false
	}
	for _, p := range s.players {
		if p.Connected {
			return false
		}
	}
	return true
}

// BeginGeneration reserves the single letter-generation slot. It returns true
// exactly once per completion (or per retry after a failure); concurrent
// duplicate triggers see false.
func (s *Session) BeginGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completed || s.generatedLetter != "" || s.generating {
		return false
	}
	s.generating = true
	return true
}

// EndGeneration releases the generation slot after a failure so a retry
// can be attempted.
func (s *Session) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
}

// SetLetter stores the generated letter. Cleared only by Reset.
func (s *Session) SetLetter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedLetter = text
	s.generating = false
}

// Words returns copies of both word lists (seat order).
func (s *Session) Words() (player1 []string, player2 []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.player1Words...), append([]string{}, s.player2Words...)
}

// View returns a consistent snapshot of the shared state.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// view builds the snapshot; callers must hold the mutex.
func (s *Session) view() SessionView {
	players := make([]Player, len(s.players))
	copy(players, s.players)

	currentID := ""
	if seat := seatOfTurn(s.currentTurn); seat < len(s.players) {
		currentID = s.players[seat].ID
	}

	return SessionView{
		GameID:          s.id,
		Players:         players,
		Player1Words:    append([]string{}, s.player1Words...),
		Player2Words:    append([]string{}, s.player2Words...),
		CurrentTurn:     s.currentTurn,
		CurrentPlayerID: currentID,
		CurrentOptions:  append([]string{}, s.currentOptions...),
		Completed:       s.completed,
		GeneratedLetter: s.generatedLetter,
		Generating:      s.generating,
	}
}

// seatOf returns the seat index for a player id, or -1 if not seated.
func (s *Session) seatOf(playerID string) int {
	for i, p := range s.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// turnOf maps a seat index to its turn value.
func turnOf(seat int) Turn {
	if seat == 0 {
		return TurnPlayer1
	}
	return TurnPlayer2
}

// seatOfTurn maps a turn value to its seat index.
func seatOfTurn(t Turn) int {
	if t == TurnPlayer1 {
		return 0
	}
	return 1
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
