// internal/letter/generator.go
//
// Letter generation for completed games.
// Responsibilities:
//   - Validate word lists (exactly 5 per player).
//   - Build the structured prompt embedding each word under its semantic slot.
//   - Invoke the text model with a deadline.
//   - Reject malformed output (missing salutation/closing, too short, leaked
//     slot labels) rather than returning it.
//   - Cache successful letters by game id and archive them for later lookup.

package letter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// WordsPerPlayer is the exact number of words required from each player.
const WordsPerPlayer = 5

// TextModel is the external text-generation collaborator: prompt in, text out.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the model call with validation, quality gating, caching,
// and archival.
type Generator struct {
	model   TextModel
	cache   *Cache
	archive *Archive // optional; nil disables persistence
	timeout time.Duration
}

// NewGenerator constructs a Generator. archive may be nil.
func NewGenerator(model TextModel, archive *Archive, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		model:   model,
		cache:   NewCache(),
		archive: archive,
		timeout: timeout,
	}
}

// Generate produces the love letter for the given word lists. When gameID is
// non-empty and a fresh letter is already cached for it, that letter is
// returned without a second external call.
func (g *Generator) Generate(ctx context.Context, player1Words, player2Words []string, gameID string) (string, error) {
	if len(player1Words) != WordsPerPlayer || len(player2Words) != WordsPerPlayer {
		return "", ErrInvalidInput
	}

	if gameID != "" {
		if text, ok := g.cache.Get(gameID); ok {
			return text, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.model.GenerateText(ctx, BuildPrompt(player1Words, player2Words))
	if err != nil {
		return "", fmt.Errorf("generate letter: %w", err)
	}
	if err := checkQuality(text); err != nil {
		return "", err
	}

	if gameID != "" {
		g.cache.Set(gameID, text)
		if g.archive != nil {
			if err := g.archive.Insert(ctx, gameID, text); err != nil {
				log.Warn().Err(err).Str("gameId", gameID).Msg("archive letter")
			}
		}
	}
	return text, nil
}

// Lookup returns the letter previously generated for the game, consulting the
// cache first and then the archive (within the cache TTL).
func (g *Generator) Lookup(ctx context.Context, gameID string) (string, error) {
	if text, ok := g.cache.Get(gameID); ok {
		return text, nil
	}
	if g.archive != nil {
		text, createdAt, err := g.archive.Get(ctx, gameID)
		if err == nil && time.Since(createdAt) < CacheTTL {
			g.cache.Set(gameID, text)
			return text, nil
		}
	}
	return "", ErrLetterNotFound
}

// checkQuality enforces the structural sanity gate on model output.
func checkQuality(text string) error {
	if !strings.Contains(text, "Dear") ||
		!strings.Contains(text, "Love,") ||
		len(text) < 100 ||
		strings.Contains(text, "Player 1") ||
		strings.Contains(text, "Player 2") {
		return ErrQualityCheck
	}
	return nil
}

// BuildPrompt embeds both word lists under their semantic slots:
// player 1 supplies action, quality, adventure, promise, signature;
// player 2 supplies pet name, feature, feeling, nickname, closing.
func BuildPrompt(player1Words, player2Words []string) string {
	return fmt.Sprintf(`You are an expert love letter writer. Write a charming and playful love letter incorporating specific words naturally into the text. Follow this exact structure:

1. Start with "Dear [Pet Name]," on its own line
2. Write 3-4 paragraphs of romantic content
3. End with "Love," on its own line
4. Sign with the signature word on the final line

Required words to include (use exact spelling and integrate naturally):
FROM PLAYER 1:
- Action word: "%s"
- Quality: "%s"
- Adventure: "%s"
- Promise: "%s"
- Signature: "%s"

FROM PLAYER 2:
- Pet Name: "%s" (use in greeting)
- Feature: "%s"
- Feeling: "%s"
- Nickname: "%s"
- Closing: "%s" (use near the end)

Style requirements:
- Write 150-200 words
- Use warm, affectionate tone
- Include gentle humor
- Make one playfully dramatic declaration of love
- Maintain proper letter formatting with clear paragraphs
- Ensure natural flow between sentences
- Avoid forced or awkward word placement

DO NOT:
- Include the word lists in the output
- Use placeholder text
- Break from the letter format
- End abruptly
- Make meta-comments about the writing

Example structure:
Dear [Pet Name],

[First paragraph with some required words]

[Second paragraph with more required words]

[Final paragraph with remaining words and closing]

Love,
[Signature]`,
		player1Words[0], player1Words[1], player1Words[2], player1Words[3], player1Words[4],
		player2Words[0], player2Words[1], player2Words[2], player2Words[3], player2Words[4],
	)
}
