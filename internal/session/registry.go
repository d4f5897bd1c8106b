// internal/session/registry.go
//
// Registry of live game sessions, keyed by game id.
//
// Characteristics:
//   - Injected instance with explicit lifecycle; there is no package-level
//     singleton, so tests construct a fresh registry each.
//   - Tracks player → session membership for disconnect cleanup.
//   - Sessions are destroyed once no seated player has a live connection.
//   - State is lost when the process restarts.

package session

import "sync"

// Departure describes the effect of a disconnect on one session.
type Departure struct {
	SessionID string
	Empty     bool // true when the session was destroyed
}

// Registry creates, looks up, and destroys sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	members  map[string]map[string]struct{} // player id -> set of session ids
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		members:  make(map[string]map[string]struct{}),
	}
}

// Create makes a new session with the creator seated as player 1.
func (r *Registry) Create(creatorID string) (*Session, error) {
	s, err := New(creatorID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	r.addMember(creatorID, s.ID())
	return s, nil
}

// Get resolves a session by game id.
func (r *Registry) Get(gameID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[gameID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Join seats the player in the session and records the membership.
func (r *Registry) Join(gameID, playerID string) (*Session, SessionView, error) {
	s, err := r.Get(gameID)
	if err != nil {
		return nil, SessionView{}, err
	}
	view, err := s.Join(playerID)
	if err != nil {
		return nil, SessionView{}, err
	}
	r.mu.Lock()
	r.addMember(playerID, gameID)
	r.mu.Unlock()
	return s, view, nil
}

// Remove destroys a session and clears every membership pointing at it.
func (r *Registry) Remove(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(gameID)
}

// DropPlayer handles a disconnect: every session the player belongs to is
// marked, and sessions left with no live connection are destroyed.
func (r *Registry) DropPlayer(playerID string) []Departure {
	r.mu.Lock()
	ids := make([]string, 0, len(r.members[playerID]))
	for id := range r.members[playerID] {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var out []Departure
	for _, id := range ids {
		s, err := r.Get(id)
		if err != nil {
			continue
		}
		empty := s.MarkDisconnected(playerID)
		if empty {
			r.Remove(id)
		}
		out = append(out, Departure{SessionID: id, Empty: empty})
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// addMember records a player → session membership; callers hold the mutex.
func (r *Registry) addMember(playerID, gameID string) {
	set, ok := r.members[playerID]
	if !ok {
		set = make(map[string]struct{})
		r.members[playerID] = set
	}
	set[gameID] = struct{}{}
}

// removeLocked deletes the session and its memberships; callers hold the mutex.
func (r *Registry) removeLocked(gameID string) {
	delete(r.sessions, gameID)
	for playerID, set := range r.members {
		delete(set, gameID)
		if len(set) == 0 {
			delete(r.members, playerID)
		}
	}
}
