package redis

import (
	"fmt"

	"github.com/mcoot/farkle-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "farkle"

// playerKey returns the Redis key for a Player document
func playerKey(id model.ConnectionID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// gameKey returns the Redis key for a Game document
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}
