// internal/gateway/messages.go
//
// Wire shapes for the realtime protocol. Inbound events carry a "type"
// discriminator; outbound events echo the same convention.

package gateway

import "github.com/loveletter-builder/go-server/internal/session"

// inboundEvent is the envelope for every client → server message.
type inboundEvent struct {
	Type        string `json:"type"`
	GameID      string `json:"gameId,omitempty"`
	Word        string `json:"word,omitempty"`
	PlayerID    string `json:"playerId,omitempty"`
	PlayerToken string `json:"playerToken,omitempty"`
}

// Inbound event types.
const (
	evCreateGame      = "createGame"
	evJoinGame        = "joinGame"
	evRejoinGame      = "rejoinGame"
	evSelectWord      = "selectWord"
	evResetGame       = "resetGame"
	evRetryGeneration = "retryGeneration"
)

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type gameCreatedEvent struct {
	Type        string              `json:"type"`
	GameID      string              `json:"gameId"`
	PlayerID    string              `json:"playerId"`
	PlayerToken string              `json:"playerToken"`
	Role        string              `json:"role"`
	State       session.SessionView `json:"state"`
}

type gameJoinedEvent struct {
	Type        string              `json:"type"`
	GameID      string              `json:"gameId"`
	Players     int                 `json:"players"`
	Role        string              `json:"role"`
	PlayerID    string              `json:"playerId,omitempty"`
	PlayerToken string              `json:"playerToken,omitempty"`
	State       session.SessionView `json:"state"`
}

type gameStartEvent struct {
	Type  string              `json:"type"`
	Role  string              `json:"role"`
	State session.SessionView `json:"state"`
}

type gameStateUpdateEvent struct {
	Type  string              `json:"type"`
	Role  string              `json:"role,omitempty"`
	State session.SessionView `json:"state"`
}

type playerDisconnectedEvent struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

type generationFailedEvent struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Error  string `json:"error"`
}
