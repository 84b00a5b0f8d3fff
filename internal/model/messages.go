package model

// MessageType tags an outbound message
type MessageType string

const (
	// Failure messages, sent to the acting connection only
	MessageFailedToCreate  MessageType = "creategame/failedtocreate"
	MessageFailedToJoin    MessageType = "joingame/failedtojoin"
	MessageFailedToStart   MessageType = "game/failedtostartgame"
	MessageFailedToRoll    MessageType = "game/failedtorolldice"
	MessageFailedToProcess MessageType = "game/failedtoprocess"

	// Game messages
	MessageYouJoinedGame MessageType = "game/youjoinedgame"
	MessageJoinedGame    MessageType = "game/joinedgame"
	MessageGameStarted   MessageType = "game/gamestarted"
	MessageRolledDice    MessageType = "game/rolleddice"
	MessageEndTurn       MessageType = "game/endturn"
)

// Message is the outbound wire envelope
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// ErrorPayload carries a failure message to the acting connection
type ErrorPayload struct {
	ErrorMessage string `json:"errorMessage"`
}

// YouJoinedGamePayload is sent to a player who created or joined a game
type YouJoinedGamePayload struct {
	GameID     GameID   `json:"gameId"`
	PlayerName string   `json:"playerName"`
	Players    []string `json:"players"`
}

// JoinedGamePayload tells the existing roster about a new joiner
type JoinedGamePayload struct {
	PlayerName string `json:"playerName"`
}

// GameStartedPayload announces the fixed turn order and first actor
type GameStartedPayload struct {
	PlayerTurns []string `json:"playerTurns"`
	Round       int      `json:"round"`
	PlayersTurn string   `json:"playersTurn"`
}

// RolledDicePayload announces a mid-turn roll that stayed scorable
type RolledDicePayload struct {
	PlayerName     string `json:"playerName"`
	DiceRolls      []int  `json:"diceRolls"`
	PlayerDiceKept []int  `json:"playerDiceKept,omitempty"`
	ScoredThisRoll int    `json:"scoredThisRoll,omitempty"`
}

// EndTurnPayload announces the end of a turn, voluntary or bust.
// Round and NextPlayerTurn are omitted when EndGame is set.
type EndTurnPayload struct {
	PlayerName     string `json:"playerName"`
	PlayerDiceKept []int  `json:"playerDiceKept"`
	ScoredThisRoll int    `json:"scoredThisRoll"`
	ScoredThisTurn int    `json:"scoredThisTurn"`
	Crapout        bool   `json:"crapout,omitempty"`
	DiceRolls      []int  `json:"diceRolls,omitempty"`
	Round          int    `json:"round,omitempty"`
	NextPlayerTurn string `json:"nextPlayerTurn,omitempty"`
	EndGame        bool   `json:"endGame,omitempty"`
}
