package model

import "time"

// ConnectionID identifies a live transport connection. It doubles as the
// primary key of the Player document, mirroring the connection lifecycle.
type ConnectionID string

// PlayerStatus represents a player's relationship to a game
type PlayerStatus string

const (
	PlayerStatusPending PlayerStatus = "pending" // Connected, not yet in a game
	PlayerStatusInGame  PlayerStatus = "in-game" // Joined or created a game
)

// Player is the per-connection document. It is created pending on connect,
// promoted to in-game on create/join, and deleted on disconnect.
type Player struct {
	ConnectionID ConnectionID `json:"connectionId"`
	Status       PlayerStatus `json:"status"`
	GameID       GameID       `json:"gameId,omitempty"`
	Name         string       `json:"name,omitempty"`
	CreatedOn    time.Time    `json:"createdOn"`
}
