// internal/gateway/gateway.go
//
// Realtime protocol handler: binds inbound WebSocket events to session
// operations and broadcasts resulting state to room members.
// Responsibilities:
//   - Upgrade connections and run per-client pumps.
//   - Dispatch createGame/joinGame/rejoinGame/selectWord/resetGame events.
//   - Issue signed per-player session tokens at seat time and verify them
//     on rejoin, so identity survives reconnects.
//   - Trigger letter generation exactly once on the completing selection
//     and broadcast the result (or a room-visible failure with retry).
//   - On disconnect, detach the player and tear down empty sessions.
//
// Errors are always scoped to the originating connection; only
// playerDisconnected and generation results are room-wide.

package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/loveletter-builder/go-server/internal/letter"
	"github.com/loveletter-builder/go-server/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Gateway routes protocol events into the registry and fans state back out.
type Gateway struct {
	registry *session.Registry
	gen      *letter.Generator
	secret   []byte

	mu    sync.Mutex
	rooms map[string]map[*client]struct{} // game id -> subscribed clients
}

// New constructs a Gateway. secret signs the per-player session tokens.
func New(registry *session.Registry, gen *letter.Generator, secret string) *Gateway {
	return &Gateway{
		registry: registry,
		gen:      gen,
		secret:   []byte(secret),
		rooms:    make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and runs the client pumps.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := newClient(conn)
	go c.writePump()
	g.readPump(c)
}

// dispatch routes one inbound event.
func (g *Gateway) dispatch(c *client, ev inboundEvent) {
	switch ev.Type {
	case evCreateGame:
		g.handleCreate(c)
	case evJoinGame:
		g.handleJoin(c, ev)
	case evRejoinGame:
		g.handleRejoin(c, ev)
	case evSelectWord:
		g.handleSelect(c, ev)
	case evResetGame:
		g.handleReset(c, ev)
	case evRetryGeneration:
		g.handleRetry(c, ev)
	default:
		c.enqueue(errorEvent{Type: "error", Message: "Unknown event type"})
	}
}

// ------------------------------ event handlers -----------------------------

func (g *Gateway) handleCreate(c *client) {
	playerID := uuid.NewString()
	s, err := g.registry.Create(playerID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.rebind(c, playerID, s.ID())

	token, err := g.signPlayerToken(playerID, s.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign player token")
	}
	c.enqueue(gameCreatedEvent{
		Type:        "gameCreated",
		GameID:      s.ID(),
		PlayerID:    playerID,
		PlayerToken: token,
		Role:        "player1",
		State:       s.View(),
	})
	log.Info().Str("gameId", s.ID()).Msg("game created")
}

func (g *Gateway) handleJoin(c *client, ev inboundEvent) {
	if ev.GameID == "" {
		c.enqueue(errorEvent{Type: "error", Message: "Game not found"})
		return
	}
	playerID := c.playerID
	if playerID == "" {
		playerID = uuid.NewString()
	}
	s, view, err := g.registry.Join(ev.GameID, playerID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.rebind(c, playerID, s.ID())

	token, err := g.signPlayerToken(playerID, s.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign player token")
	}
	role := roleOf(view, playerID)

	// The joiner gets their identity; the rest of the room just sees the seat fill.
	c.enqueue(gameJoinedEvent{
		Type: "gameJoined", GameID: s.ID(), Players: len(view.Players),
		Role: role, PlayerID: playerID, PlayerToken: token, State: view,
	})
	g.broadcastExcept(s.ID(), c, gameJoinedEvent{
		Type: "gameJoined", GameID: s.ID(), Players: len(view.Players),
		Role: role, State: view,
	})

	if len(view.Players) == session.MaxPlayers {
		g.forEach(s.ID(), func(member *client) {
			member.enqueue(gameStartEvent{
				Type:  "gameStart",
				Role:  roleOf(view, member.playerID),
				State: view,
			})
		})
		log.Info().Str("gameId", s.ID()).Msg("game started")
	}
}

func (g *Gateway) handleRejoin(c *client, ev inboundEvent) {
	if ev.GameID == "" {
		c.enqueue(errorEvent{Type: "error", Message: "Game not found"})
		return
	}
	playerID := ev.PlayerID
	if ev.PlayerToken != "" {
		pid, err := g.verifyPlayerToken(ev.PlayerToken, ev.GameID)
		if err != nil {
			c.enqueue(errorEvent{Type: "error", Message: "Player not in game"})
			return
		}
		playerID = pid
	}
	s, err := g.registry.Get(ev.GameID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	view, err := s.Rejoin(playerID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.rebind(c, playerID, s.ID())

	// Full view to the requester only.
	c.enqueue(gameStateUpdateEvent{
		Type:  "gameStateUpdate",
		Role:  roleOf(view, playerID),
		State: view,
	})
}

func (g *Gateway) handleSelect(c *client, ev inboundEvent) {
	if ev.GameID == "" || ev.Word == "" {
		c.enqueue(errorEvent{Type: "error", Message: "Game ID and word are required"})
		return
	}
	if c.playerID == "" || c.gameID != ev.GameID {
		c.enqueue(errorEvent{Type: "error", Message: "Player not in this game"})
		return
	}
	s, err := g.registry.Get(ev.GameID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	view, justCompleted, err := s.SelectWord(c.playerID, ev.Word)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.broadcast(s.ID(), gameStateUpdateEvent{Type: "gameStateUpdate", State: view})

	if justCompleted && s.BeginGeneration() {
		go g.generateLetter(s)
	}
}

func (g *Gateway) handleReset(c *client, ev inboundEvent) {
	if c.playerID == "" || c.gameID != ev.GameID {
		c.enqueue(errorEvent{Type: "error", Message: "Player not in this game"})
		return
	}
	s, err := g.registry.Get(ev.GameID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	view, err := s.Reset()
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.broadcast(s.ID(), gameStateUpdateEvent{Type: "gameStateUpdate", State: view})
}

func (g *Gateway) handleRetry(c *client, ev inboundEvent) {
	if c.playerID == "" || c.gameID != ev.GameID {
		c.enqueue(errorEvent{Type: "error", Message: "Player not in this game"})
		return
	}
	s, err := g.registry.Get(ev.GameID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	if !s.BeginGeneration() {
		c.enqueue(errorEvent{Type: "error", Message: "Letter generation is not available"})
		return
	}
	go g.generateLetter(s)
}

// handleDisconnect detaches the player from their sessions and notifies any
// remaining room member; empty sessions are destroyed by the registry.
// Closing the send channel lets the write pump exit instead of blocking on a
// channel nobody feeds again.
func (g *Gateway) handleDisconnect(c *client) {
	g.unsubscribe(c)
	defer c.closeSend()
	if c.playerID == "" {
		return
	}
	for _, dep := range g.registry.DropPlayer(c.playerID) {
		if dep.Empty {
			g.dropRoom(dep.SessionID)
			log.Info().Str("gameId", dep.SessionID).Msg("session destroyed")
			continue
		}
		g.broadcast(dep.SessionID, playerDisconnectedEvent{
			Type:   "playerDisconnected",
			GameID: dep.SessionID,
		})
	}
}

// -------------------------- letter generation ------------------------------

// generateLetter runs the single external call for a completed session and
// broadcasts the outcome. BeginGeneration has already reserved the slot.
func (g *Gateway) generateLetter(s *session.Session) {
	p1, p2 := s.Words()
	text, err := g.gen.Generate(context.Background(), p1, p2, s.ID())
	if err != nil {
		s.EndGeneration()
		log.Error().Err(err).Str("gameId", s.ID()).Msg("letter generation failed")
		g.broadcast(s.ID(), generationFailedEvent{
			Type:   "generationFailed",
			GameID: s.ID(),
			Error:  "Failed to generate love letter",
		})
		return
	}
	s.SetLetter(text)
	g.broadcast(s.ID(), gameStateUpdateEvent{Type: "gameStateUpdate", State: s.View()})
	log.Info().Str("gameId", s.ID()).Msg("letter generated")
}

// ------------------------------ room plumbing ------------------------------

// rebind points the client at the session's room, leaving any room it was
// subscribed to before so stale memberships cannot pile up.
func (g *Gateway) rebind(c *client, playerID, gameID string) {
	if c.gameID != "" && c.gameID != gameID {
		g.unsubscribe(c)
	}
	c.playerID = playerID
	c.gameID = gameID
	g.subscribe(gameID, c)
}

func (g *Gateway) subscribe(gameID string, c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[gameID]
	if !ok {
		room = make(map[*client]struct{})
		g.rooms[gameID] = room
	}
	room[c] = struct{}{}
}

func (g *Gateway) unsubscribe(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c.gameID == "" {
		return
	}
	if room, ok := g.rooms[c.gameID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(g.rooms, c.gameID)
		}
	}
}

func (g *Gateway) dropRoom(gameID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, gameID)
}

// members snapshots the room so sends happen outside the lock.
func (g *Gateway) members(gameID string) []*client {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*client, 0, len(g.rooms[gameID]))
	for c := range g.rooms[gameID] {
		out = append(out, c)
	}
	return out
}

func (g *Gateway) forEach(gameID string, fn func(*client)) {
	for _, c := range g.members(gameID) {
		fn(c)
	}
}

func (g *Gateway) broadcast(gameID string, v any) {
	g.forEach(gameID, func(c *client) {
		if !c.enqueue(v) {
			log.Warn().Str("gameId", gameID).Msg("evicting slow client")
			c.conn.Close()
		}
	})
}

func (g *Gateway) broadcastExcept(gameID string, skip *client, v any) {
	g.forEach(gameID, func(c *client) {
		if c != skip {
			c.enqueue(v)
		}
	})
}

// ------------------------------ error mapping ------------------------------

// sendError maps session errors onto the protocol's scoped error messages.
func (g *Gateway) sendError(c *client, err error) {
	msg := "Internal server error"
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		msg = "Game not found"
	case errors.Is(err, session.ErrSessionFull):
		msg = "Game is full"
	case errors.Is(err, session.ErrPlayerNotInSession):
		msg = "Player not in game"
	case errors.Is(err, session.ErrNotYourTurn):
		msg = "Not your turn"
	case errors.Is(err, session.ErrGameCompleted):
		msg = "Game is already completed"
	case errors.Is(err, session.ErrWordBankEmpty):
		msg = "Word bank is unavailable"
	}
	c.enqueue(errorEvent{Type: "error", Message: msg})
}

// ------------------------------ player tokens ------------------------------

// signPlayerToken issues the stable per-player session token bound to the
// game, used for rejoin and turn-ownership checks across reconnects.
func (g *Gateway) signPlayerToken(playerID, gameID string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": playerID,
		"gid": gameID,
		"iat": time.Now().Unix(),
	})
	return t.SignedString(g.secret)
}

// verifyPlayerToken checks the signature and the game binding, returning the
// player id the token was issued for.
func (g *Gateway) verifyPlayerToken(token, gameID string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid player token")
	}
	pid, _ := claims["pid"].(string)
	gid, _ := claims["gid"].(string)
	if pid == "" || gid != gameID {
		return "", errors.New("invalid player token")
	}
	return pid, nil
}

// roleOf reports which seat the player holds in the view.
func roleOf(v session.SessionView, playerID string) string {
	if len(v.Players) > 0 && v.Players[0].ID == playerID {
		return "player1"
	}
	return "player2"
}
