package session

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loveletter-builder/go-server/internal/wordbank"
)

func TestMain(m *testing.M) {
	if err := wordbank.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const (
	creatorID = "player-a"
	joinerID  = "player-b"
)

// newTwoPlayerSession seats both players and returns the session.
func newTwoPlayerSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(creatorID)
	assert.NoError(t, err)
	_, err = s.Join(joinerID)
	assert.NoError(t, err)
	return s
}

// playRounds performs n valid selections, always from the seat holding the turn.
func playRounds(t *testing.T, s *Session, n int) (lastView SessionView, lastCompleted bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := creatorID
		if s.View().CurrentTurn == TurnPlayer2 {
			id = joinerID
		}
		view, completed, err := s.SelectWord(id, "word")
		assert.NoError(t, err)
		lastView, lastCompleted = view, completed
	}
	return lastView, lastCompleted
}

func TestNewSeatsCreatorAsPlayer1(t *testing.T) {
	s, err := New(creatorID)
	assert.NoError(t, err)

	view := s.View()
	assert.Len(t, view.Players, 1)
	assert.Equal(t, creatorID, view.Players[0].ID)
	assert.True(t, view.Players[0].IsCreator)
	assert.Equal(t, TurnPlayer1, view.CurrentTurn)
	assert.Len(t, view.CurrentOptions, OptionCount, "Creation should draw a full option set")
	assert.False(t, view.Completed)
}

func TestTurnAlternation(t *testing.T) {
	s := newTwoPlayerSession(t)

	for n := 1; n < 10; n++ {
		view, _ := playRounds(t, s, 1)
		if n%2 == 0 {
			assert.Equal(t, TurnPlayer1, view.CurrentTurn, "Turn should be player1 after an even number of selections")
		} else {
			assert.Equal(t, TurnPlayer2, view.CurrentTurn, "Turn should be player2 after an odd number of selections")
		}
	}
}

func TestSelectWordOutOfTurnRejected(t *testing.T) {
	s := newTwoPlayerSession(t)
	before := s.View()

	_, _, err := s.SelectWord(joinerID, "ninja-kicked")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	after := s.View()
	assert.Equal(t, before.Player1Words, after.Player1Words, "Rejected selection should not mutate word lists")
	assert.Equal(t, before.Player2Words, after.Player2Words)
	assert.Equal(t, before.CurrentTurn, after.CurrentTurn)
	assert.Equal(t, before.CurrentOptions, after.CurrentOptions)
}

func TestSelectWordUnknownPlayerRejected(t *testing.T) {
	s := newTwoPlayerSession(t)

	_, _, err := s.SelectWord("stranger", "word")
	assert.ErrorIs(t, err, ErrPlayerNotInSession)
}

func TestCompletionAfterTenSelections(t *testing.T) {
	s := newTwoPlayerSession(t)

	view, completed := playRounds(t, s, 9)
	assert.False(t, completed, "Game should not complete before both targets are met")
	assert.False(t, view.Completed)

	view, completed = playRounds(t, s, 1)
	assert.True(t, completed, "The tenth selection should complete the game exactly once")
	assert.True(t, view.Completed)
	assert.Len(t, view.Player1Words, WordTarget)
	assert.Len(t, view.Player2Words, WordTarget)
	assert.Empty(t, view.CurrentOptions)

	_, _, err := s.SelectWord(creatorID, "one more")
	assert.ErrorIs(t, err, ErrGameCompleted, "An eleventh selection must be rejected")
}

func TestOptionsStayFullWhileInProgress(t *testing.T) {
	s := newTwoPlayerSession(t)

	for i := 0; i < 9; i++ {
		view, _ := playRounds(t, s, 1)
		assert.Len(t, view.CurrentOptions, OptionCount)
	}
}

func TestJoinFullSessionRejected(t *testing.T) {
	s := newTwoPlayerSession(t)

	_, err := s.Join("third-wheel")
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.Len(t, s.View().Players, MaxPlayers, "Failed join should not mutate players")
}

func TestJoinIsIdempotentForSeatedPlayer(t *testing.T) {
	s := newTwoPlayerSession(t)

	view, err := s.Join(joinerID)
	assert.NoError(t, err)
	assert.Len(t, view.Players, MaxPlayers)
}

func TestRejoinUnknownPlayerRejected(t *testing.T) {
	s := newTwoPlayerSession(t)
	before := s.View()

	_, err := s.Rejoin("stranger")
	assert.ErrorIs(t, err, ErrPlayerNotInSession)
	assert.Equal(t, before.Players, s.View().Players, "Failed rejoin should not alter the session")
}

func TestRejoinRestoresSeat(t *testing.T) {
	s := newTwoPlayerSession(t)

	empty := s.MarkDisconnected(joinerID)
	assert.False(t, empty, "Session with one live connection should not be empty")

	view, err := s.Rejoin(joinerID)
	assert.NoError(t, err)
	assert.Equal(t, joinerID, view.Players[1].ID, "Seat assignment should survive a reconnect")
	assert.True(t, view.Players[1].Connected)
}

func TestMarkDisconnectedLastPlayerEmptiesSession(t *testing.T) {
	s := newTwoPlayerSession(t)

	assert.False(t, s.MarkDisconnected(creatorID))
	assert.True(t, s.MarkDisconnected(joinerID), "Detaching the last connection should empty the session")
}

func TestResetClearsState(t *testing.T) {
	s := newTwoPlayerSession(t)
	playRounds(t, s, 10)
	s.SetLetter("Dear cosmic potato, ...")

	view, err := s.Reset()
	assert.NoError(t, err)
	assert.Empty(t, view.Player1Words)
	assert.Empty(t, view.Player2Words)
	assert.False(t, view.Completed)
	assert.Empty(t, view.GeneratedLetter)
	assert.Equal(t, TurnPlayer1, view.CurrentTurn)
	assert.Len(t, view.CurrentOptions, OptionCount, "Reset should draw a fresh option set")
}

func TestBeginGenerationIsExactlyOnce(t *testing.T) {
	s := newTwoPlayerSession(t)

	assert.False(t, s.BeginGeneration(), "Generation must not start before completion")

	playRounds(t, s, 10)
	assert.True(t, s.BeginGeneration())
	assert.False(t, s.BeginGeneration(), "Concurrent duplicate triggers must not start a second call")

	s.EndGeneration()
	assert.True(t, s.BeginGeneration(), "A failed attempt should allow a retry")

	s.SetLetter("Dear cosmic potato, ...")
	assert.False(t, s.BeginGeneration(), "A stored letter must never be regenerated")
}

func TestViewCurrentPlayerID(t *testing.T) {
	s := newTwoPlayerSession(t)

	assert.Equal(t, creatorID, s.View().CurrentPlayerID)
	playRounds(t, s, 1)
	assert.Equal(t, joinerID, s.View().CurrentPlayerID)
}
