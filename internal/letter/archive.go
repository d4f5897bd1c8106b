// internal/letter/archive.go
//
// SQLite persistence for generated letters. The archive backs the
// letter-lookup endpoint across cache misses; game state itself is never
// persisted.

package letter

import (
	"context"
	"database/sql"
	"time"
)

// Archive stores generated letters keyed by game id.
type Archive struct{ db *sql.DB }

// NewArchive wraps an opened database handle.
func NewArchive(db *sql.DB) *Archive { return &Archive{db: db} }

// Insert records a letter for a game. A second insert for the same game id is
// ignored, so the first generated letter stays canonical.
func (a *Archive) Insert(ctx context.Context, gameID, text string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO letters(game_id, letter, created_at) VALUES(?,?,?)`,
		gameID, text, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get loads the letter and its creation time for a game id.
func (a *Archive) Get(ctx context.Context, gameID string) (string, time.Time, error) {
	var text, created string
	err := a.db.QueryRowContext(ctx,
		`SELECT letter, created_at FROM letters WHERE game_id=?`, gameID,
	).Scan(&text, &created)
	if err != nil {
		return "", time.Time{}, err
	}
	t, _ := time.Parse(time.RFC3339, created)
	return text, t, nil
}
