// internal/wordbank/wordbank.go
//
// Category word lists for the letter-building game.
//
// Responsibilities:
//   - Load the category → phrases mapping from an environment-provided JSON file
//     or fall back to the embedded default bank.
//   - Expose the fixed 7-category rotation used to pick the category for each turn.
//   - Draw uniformly shuffled option sets for the client to choose from.
//
// Initialization behavior (Init):
//   1. If WORDBANK_FILE is set, load the bank from that JSON file.
//   2. Otherwise use the embedded default bank (wordbank.json).
//
// Constraints:
//   • The rotation order is fixed and cycles by total words selected so far.
//   • A missing or empty category degrades to an empty option set; it never panics.
//   • Initialization is run once (sync.Once).

package wordbank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"sync"
)

//go:embed wordbank.json
var embeddedBank []byte

// Rotation is the fixed category sequence; the category offered for a turn is
// Rotation[totalWordsSelected % len(Rotation)].
var Rotation = []string{
	"actions", "features", "qualities", "adventures",
	"petNames", "promises", "signatures",
}

var (
	initOnce   sync.Once
	bank       map[string][]string
	initialErr error
)

// Init loads the word bank exactly once.
// Returns an error if no category ends up with any phrases (the bank is unusable).
func Init() error {
	initOnce.Do(func() {
		raw := embeddedBank
		if path := os.Getenv("WORDBANK_FILE"); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				initialErr = err
				return
			}
			raw = b
		}
		m := map[string][]string{}
		if err := json.Unmarshal(raw, &m); err != nil {
			initialErr = err
			return
		}
		bank = m
		if empty() {
			initialErr = errors.New("wordbank: no categories with phrases")
		}
	})
	return initialErr
}

// empty reports whether every category is missing or has no phrases.
func empty() bool {
	for _, phrases := range bank {
		if len(phrases) > 0 {
			return false
		}
	}
	return true
}

// CategoryAt returns the rotation category for the given total number of
// words selected so far.
func CategoryAt(totalWords int) string {
	return Rotation[totalWords%len(Rotation)]
}

// RandomCategory picks a category uniformly among those with at least one phrase.
// ok is false when the bank is unusable.
func RandomCategory() (name string, ok bool) {
	var candidates []string
	for _, c := range Rotation {
		if len(bank[c]) > 0 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rand.Intn(len(candidates))], true
}

// Options returns n phrases drawn from the category via a uniform
// Fisher–Yates shuffle. A missing or empty category yields an empty slice.
func Options(category string, n int) []string {
	phrases := bank[category]
	if len(phrases) == 0 {
		return []string{}
	}
	shuffled := make([]string, len(phrases))
	copy(shuffled, phrases)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// Stats returns the number of categories and total phrases loaded.
func Stats() (categories int, phrases int) {
	for _, p := range bank {
		if len(p) > 0 {
			categories++
			phrases += len(p)
		}
	}
	return
}
