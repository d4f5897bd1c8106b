package letter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	p1Words = []string{"ninja-kicked", "surprisingly squeaky", "fought ninjas in pajamas", "dramatically serenade", "Captain Love"}
	p2Words = []string{"cosmic potato", "majestic nostrils", "enchanted", "waffle warrior", "forever yours"}
)

// goodLetter passes the structural quality gate.
const goodLetter = `Dear cosmic potato,

From the moment I ninja-kicked my way into your life and noticed your majestic nostrils, I knew. Your surprisingly squeaky laugh reminds me of the day we fought ninjas in pajamas, and I promise to dramatically serenade you, my waffle warrior, forever yours.

Love,
Captain Love`

// fakeModel records calls and returns canned output.
type fakeModel struct {
	calls      int
	lastPrompt string
	text       string
	err        error
}

func (f *fakeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.text, f.err
}

func newTestGenerator(model TextModel) *Generator {
	return NewGenerator(model, nil, 5*time.Second)
}

func TestGenerateRejectsWrongWordCounts(t *testing.T) {
	model := &fakeModel{text: goodLetter}
	g := newTestGenerator(model)

	_, err := g.Generate(context.Background(), p1Words[:4], p2Words, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = g.Generate(context.Background(), p1Words, nil, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 0, model.calls, "Invalid input must never reach the model")
}

func TestGenerateEmbedsEveryWordInPrompt(t *testing.T) {
	model := &fakeModel{text: goodLetter}
	g := newTestGenerator(model)

	_, err := g.Generate(context.Background(), p1Words, p2Words, "")
	assert.NoError(t, err)

	for _, w := range append(append([]string{}, p1Words...), p2Words...) {
		assert.Contains(t, model.lastPrompt, w)
	}
	assert.Contains(t, model.lastPrompt, "Pet Name")
	assert.Contains(t, model.lastPrompt, "Signature")
}

func TestGenerateQualityGate(t *testing.T) {
	filler := strings.Repeat("so much love in every line of this letter. ", 5)
	cases := []struct {
		name string
		text string
	}{
		{"missing salutation", "Hello cosmic potato, " + filler + " Love,"},
		{"missing closing", "Dear cosmic potato, " + filler},
		{"too short", "Dear x, Love,"},
		{"leaks slot labels", "Dear cosmic potato, Player 1 said " + filler + " Love,"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGenerator(&fakeModel{text: tc.text})
			_, err := g.Generate(context.Background(), p1Words, p2Words, "")
			assert.ErrorIs(t, err, ErrQualityCheck)
		})
	}
}

func TestGenerateCachesByGameID(t *testing.T) {
	model := &fakeModel{text: goodLetter}
	g := newTestGenerator(model)

	first, err := g.Generate(context.Background(), p1Words, p2Words, "game-1")
	assert.NoError(t, err)
	second, err := g.Generate(context.Background(), p1Words, p2Words, "game-1")
	assert.NoError(t, err)

	assert.Equal(t, first, second, "A cached game must replay byte-identical text")
	assert.Equal(t, 1, model.calls, "The second request must not invoke the model")
}

func TestGenerateWithoutGameIDSkipsCache(t *testing.T) {
	model := &fakeModel{text: goodLetter}
	g := newTestGenerator(model)

	_, err := g.Generate(context.Background(), p1Words, p2Words, "")
	assert.NoError(t, err)
	_, err = g.Generate(context.Background(), p1Words, p2Words, "")
	assert.NoError(t, err)
	assert.Equal(t, 2, model.calls)
}

func TestGenerateWrapsModelError(t *testing.T) {
	boom := errors.New("upstream unavailable")
	g := newTestGenerator(&fakeModel{err: boom})

	_, err := g.Generate(context.Background(), p1Words, p2Words, "game-1")
	assert.ErrorIs(t, err, boom)

	_, err = g.Lookup(context.Background(), "game-1")
	assert.ErrorIs(t, err, ErrLetterNotFound, "A failed generation must not populate the cache")
}

func TestLookup(t *testing.T) {
	g := newTestGenerator(&fakeModel{text: goodLetter})

	_, err := g.Lookup(context.Background(), "game-9")
	assert.ErrorIs(t, err, ErrLetterNotFound)

	_, err = g.Generate(context.Background(), p1Words, p2Words, "game-9")
	assert.NoError(t, err)

	text, err := g.Lookup(context.Background(), "game-9")
	assert.NoError(t, err)
	assert.Equal(t, goodLetter, text)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("game-1", goodLetter)

	_, ok := c.Get("game-1")
	assert.True(t, ok)

	c.now = func() time.Time { return now.Add(CacheTTL + time.Minute) }
	_, ok = c.Get("game-1")
	assert.False(t, ok, "Entries must expire after the TTL")
}
