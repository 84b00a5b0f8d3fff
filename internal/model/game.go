package model

import "time"

// GameID is the 5-letter lowercase code players use to join a game
type GameID string

// GameStatus represents the current phase of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting-for-players"
	GameStatusInProgress GameStatus = "in-progress"
	GameStatusOver       GameStatus = "game-over"
)

const (
	// MaxPlayers is the roster cap for a single game
	MaxPlayers = 12
	// MaxNameLength is the longest allowed player name
	MaxNameLength = 12
	// DiceCount is the number of dice on a fresh table
	DiceCount = 6
	// WinningScore is the banked total that ends the game
	WinningScore = 10000
	// EntryThreshold is the minimum turn score required for a first bank
	EntryThreshold = 750
)

// GamePlayer is a roster entry with the player's banked score
type GamePlayer struct {
	ConnectionID ConnectionID `json:"connectionId"`
	Name         string       `json:"name"`
	Score        int          `json:"score"`
}

// Game is the shared game document. All turn state lives here; the active
// player is PlayerTurns[PlayerTurn].
type Game struct {
	ID      GameID     `json:"id"`
	Status  GameStatus `json:"status"`
	Players []GamePlayer `json:"players"`

	// Turn order, fixed as a permutation of player names at start
	PlayerTurns []string `json:"playerTurns,omitempty"`
	PlayerTurn  int      `json:"playerTurn"`
	Round       int      `json:"round"`

	// Dice on the table awaiting the active player's decision, and the
	// dice most recently kept. DiceKept is always a multiset subset of
	// the roll that produced DiceRolled.
	DiceRolled    []int `json:"diceRolled,omitempty"`
	DiceKept      []int `json:"diceKept,omitempty"`
	ScoreThisTurn int   `json:"scoreThisTurn"`

	CreatedOn time.Time `json:"createdOn"`

	// Version is the optimistic-concurrency token. Storage rejects a save
	// whose Version does not match the stored document.
	Version uint64 `json:"version"`
}

// CurrentPlayerName returns the name of the player whose turn it is
func (g *Game) CurrentPlayerName() string {
	if len(g.PlayerTurns) == 0 {
		return ""
	}
	return g.PlayerTurns[g.PlayerTurn]
}

// PlayerNamed returns the roster entry with the given name, or nil
func (g *Game) PlayerNamed(name string) *GamePlayer {
	for i := range g.Players {
		if g.Players[i].Name == name {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerByConnection returns the roster entry for a connection, or nil
func (g *Game) PlayerByConnection(id ConnectionID) *GamePlayer {
	for i := range g.Players {
		if g.Players[i].ConnectionID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerNames returns the roster names in join order
func (g *Game) PlayerNames() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return names
}

// Connections returns the connection ids of everyone in the game
func (g *Game) Connections() []ConnectionID {
	ids := make([]ConnectionID, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ConnectionID
	}
	return ids
}
