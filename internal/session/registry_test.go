package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry()

	s, err := r.Create(creatorID)
	assert.NoError(t, err)

	got, err := r.Get(s.ID())
	assert.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryJoin(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create(creatorID)
	assert.NoError(t, err)

	joined, view, err := r.Join(s.ID(), joinerID)
	assert.NoError(t, err)
	assert.Same(t, s, joined)
	assert.Len(t, view.Players, 2)

	_, _, err = r.Join("nope", joinerID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = r.Join(s.ID(), "third-wheel")
	assert.ErrorIs(t, err, ErrSessionFull)
}

func TestRegistryDropLastPlayerDestroysSession(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create(creatorID)
	assert.NoError(t, err)

	deps := r.DropPlayer(creatorID)
	assert.Len(t, deps, 1)
	assert.True(t, deps[0].Empty)
	assert.Equal(t, s.ID(), deps[0].SessionID)

	_, err = r.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound, "An emptied session should be destroyed")
	assert.Equal(t, 0, r.Len())
}

func TestRegistryDropOneOfTwoKeepsSession(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create(creatorID)
	assert.NoError(t, err)
	_, _, err = r.Join(s.ID(), joinerID)
	assert.NoError(t, err)

	deps := r.DropPlayer(joinerID)
	assert.Len(t, deps, 1)
	assert.False(t, deps[0].Empty)

	got, err := r.Get(s.ID())
	assert.NoError(t, err)
	assert.Same(t, s, got)
}

func TestRegistryDropUnknownPlayerIsNoop(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create(creatorID)
	assert.NoError(t, err)

	assert.Empty(t, r.DropPlayer("stranger"))
	assert.Equal(t, 1, r.Len())
}
