package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/farkle-go/internal/dependencies/clock"
	"github.com/mcoot/farkle-go/internal/dependencies/random"
	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/notify"
	"github.com/mcoot/farkle-go/internal/services/scoring"
	"github.com/mcoot/farkle-go/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 5
	// GameIDAlphabet is the characters used in game ids
	GameIDAlphabet = "abcdefghijklmnopqrstuvwxyz"

	// createAttempts bounds id-allocation retries on collision
	createAttempts = 5
)

// Controller manages the game state machine: creating, joining, starting
// and advancing games. Every operation is read-validate-write-notify;
// validation failures notify the acting connection only and never mutate.
type Controller struct {
	storage    storage.Storage
	scoring    *scoring.Service
	dispatcher *notify.Dispatcher
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	scoring *scoring.Service,
	dispatcher *notify.Dispatcher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		scoring:    scoring,
		dispatcher: dispatcher,
		clock:      clock,
		random:     random,
		logger:     logger,
	}
}

// validateName returns a rejection message for an unusable player name,
// or empty if the name is fine.
func validateName(name string) string {
	if name == "" {
		return "Player name must be passed in"
	}
	if len(name) > model.MaxNameLength {
		return "Player name must be less than 12 characters"
	}
	return ""
}

// reject reports a validation failure to the acting connection. Nothing has
// been mutated on this path.
func (c *Controller) reject(ctx context.Context, id model.ConnectionID, msgType model.MessageType, message string) error {
	c.logger.Info("rejected action",
		slog.String("connection_id", string(id)),
		slog.String("reason", message),
	)
	if err := c.dispatcher.NotifyOne(ctx, id, model.Message{
		Type:    msgType,
		Payload: model.ErrorPayload{ErrorMessage: message},
	}); err != nil {
		return err
	}
	return model.NewValidationError(message)
}

// bindPlayer promotes the connection's Player document to in-game
func (c *Controller) bindPlayer(ctx context.Context, id model.ConnectionID, name string, gameID model.GameID) error {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return err
		}
		player = &model.Player{ConnectionID: id, CreatedOn: c.clock.Now()}
	}
	player.Status = model.PlayerStatusInGame
	player.GameID = gameID
	player.Name = name
	return c.storage.SavePlayer(ctx, player)
}

// CreateGame creates a new waiting-for-players game with the actor as its
// only player and notifies the creator with the assigned id.
func (c *Controller) CreateGame(ctx context.Context, id model.ConnectionID, playerName string) (*model.Game, error) {
	if msg := validateName(playerName); msg != "" {
		return nil, c.reject(ctx, id, model.MessageFailedToCreate, msg)
	}

	game := &model.Game{
		Status: model.GameStatusWaiting,
		Players: []model.GamePlayer{
			{ConnectionID: id, Name: playerName, Score: 0},
		},
		CreatedOn: c.clock.Now(),
	}

	// Conditional create, retrying with a fresh id on collision
	err := model.ErrGameExists
	for attempt := 0; attempt < createAttempts && errors.Is(err, model.ErrGameExists); attempt++ {
		game.ID = model.GameID(c.random.String(GameIDLength, GameIDAlphabet))
		err = c.storage.CreateGame(ctx, game)
	}
	if err != nil {
		return nil, fmt.Errorf("allocate game id: %w", err)
	}

	if err := c.bindPlayer(ctx, id, playerName, game.ID); err != nil {
		return nil, err
	}

	if err := c.dispatcher.NotifyOne(ctx, id, model.Message{
		Type: model.MessageYouJoinedGame,
		Payload: model.YouJoinedGamePayload{
			GameID:     game.ID,
			PlayerName: playerName,
			Players:    []string{playerName},
		},
	}); err != nil {
		return nil, err
	}

	c.logger.Info("created game",
		slog.String("game_id", string(game.ID)),
		slog.String("player_name", playerName),
	)
	return game, nil
}

// JoinGame appends the actor to a waiting game's roster. The joiner gets the
// full roster back; everyone already in the game learns the new name.
func (c *Controller) JoinGame(ctx context.Context, id model.ConnectionID, playerName string, gameID model.GameID) error {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}

	var msg string
	switch {
	case game == nil:
		msg = "Game with this Game ID not found"
	case game.Status != model.GameStatusWaiting:
		msg = "This game has already started"
	case len(game.Players) >= model.MaxPlayers:
		msg = "This game is full (12 people already in game)"
	default:
		msg = validateName(playerName)
		if msg == "" && game.PlayerNamed(playerName) != nil {
			msg = "A player already exists in the game with this name"
		}
	}
	if msg != "" {
		return c.reject(ctx, id, model.MessageFailedToJoin, msg)
	}

	game.Players = append(game.Players, model.GamePlayer{ConnectionID: id, Name: playerName, Score: 0})
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return err
	}
	if err := c.bindPlayer(ctx, id, playerName, gameID); err != nil {
		return err
	}

	names := game.PlayerNames()
	err = c.dispatcher.NotifyAll(ctx, game.Connections(), func(conn model.ConnectionID) model.Message {
		if conn == id {
			return model.Message{
				Type: model.MessageYouJoinedGame,
				Payload: model.YouJoinedGamePayload{
					GameID:     gameID,
					PlayerName: playerName,
					Players:    names,
				},
			}
		}
		return model.Message{
			Type:    model.MessageJoinedGame,
			Payload: model.JoinedGamePayload{PlayerName: playerName},
		}
	})
	if err != nil {
		return err
	}

	c.logger.Info("player joined game",
		slog.String("game_id", string(gameID)),
		slog.String("player_name", playerName),
		slog.Int("player_count", len(game.Players)),
	)
	return nil
}

// StartGame fixes a random turn order and moves the actor's game to
// in-progress. Everyone is told the order and the first actor.
func (c *Controller) StartGame(ctx context.Context, id model.ConnectionID) error {
	game, err := c.gameForConnection(ctx, id)
	if err != nil {
		return err
	}

	var msg string
	switch {
	case game == nil:
		msg = "Player not yet connected to game"
	case game.Status != model.GameStatusWaiting:
		msg = "Game has already started"
	case len(game.Players) < 2:
		msg = "Must be more than two players to start"
	}
	if msg != "" {
		return c.reject(ctx, id, model.MessageFailedToStart, msg)
	}

	turns := game.PlayerNames()
	c.random.Shuffle(turns)

	game.Status = model.GameStatusInProgress
	game.PlayerTurns = turns
	game.PlayerTurn = 0
	game.Round = 1
	game.DiceRolled = nil
	game.DiceKept = nil
	game.ScoreThisTurn = 0

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return err
	}

	payload := model.GameStartedPayload{
		PlayerTurns: turns,
		Round:       game.Round,
		PlayersTurn: turns[0],
	}
	err = c.dispatcher.NotifyAll(ctx, game.Connections(), func(model.ConnectionID) model.Message {
		return model.Message{Type: model.MessageGameStarted, Payload: payload}
	})
	if err != nil {
		return err
	}

	c.logger.Info("started game",
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(game.Players)),
	)
	return nil
}

// TakeTurn is the central transition. The actor keeps dice from the table
// and either rolls again or banks the turn. A fresh roll with no legal keep
// is a bust: the turn ends involuntarily and the roll's potential is
// forfeited along with the keep that preceded it.
func (c *Controller) TakeTurn(ctx context.Context, id model.ConnectionID, keptDice []int, endTurn bool) error {
	game, err := c.gameForConnection(ctx, id)
	if err != nil {
		return err
	}

	var actor *model.GamePlayer
	if game != nil {
		actor = game.PlayerByConnection(id)
	}

	kept := c.scoring.Score(keptDice)

	var msg string
	switch {
	case game == nil || actor == nil:
		msg = "Player not yet connected to game"
	case game.Status == model.GameStatusWaiting:
		msg = "Game has not yet started"
	case game.Status == model.GameStatusOver:
		msg = "Game is already over"
	case game.CurrentPlayerName() != actor.Name:
		msg = "Not current player turn"
	case len(game.DiceRolled) == 0 && len(keptDice) > 0:
		msg = "Cannot keep dice before the first roll of a turn"
	case len(game.DiceRolled) > 0 && len(keptDice) == 0:
		msg = "Must keep at least one die"
	case !c.scoring.IsMultisetSubset(game.DiceRolled, keptDice):
		msg = "Kept dice must come from the last roll"
	case c.scoring.HasDeadDice(keptDice) || (len(game.DiceRolled) > 0 && kept == 0):
		msg = "Kept dice must all score"
	case endTurn && actor.Score == 0 && game.ScoreThisTurn+kept < model.EntryThreshold:
		msg = "Must score at least 750 to end your first turn"
	}
	if msg != "" {
		return c.reject(ctx, id, model.MessageFailedToRoll, msg)
	}

	if endTurn {
		// Voluntary end: bank the accumulated turn score plus this keep
		return c.advanceTurn(ctx, game, actor, turnResult{
			banked:         game.ScoreThisTurn + kept,
			keptDice:       keptDice,
			scoredThisRoll: kept,
		})
	}

	// Six dice on a fresh turn or when every die was kept (hot dice),
	// otherwise whatever the keep left on the table
	rollCount := model.DiceCount
	if len(game.DiceRolled) > 0 && len(keptDice) < len(game.DiceRolled) {
		rollCount = len(game.DiceRolled) - len(keptDice)
	}
	roll := c.rollDice(rollCount)

	if !c.scoring.IsFullyScorable(roll) {
		// Bust: only the turn score accumulated before this action banks
		return c.advanceTurn(ctx, game, actor, turnResult{
			banked:         game.ScoreThisTurn,
			keptDice:       keptDice,
			scoredThisRoll: kept,
			crapout:        true,
			bustRoll:       roll,
		})
	}

	game.DiceKept = keptDice
	game.DiceRolled = roll
	game.ScoreThisTurn += kept

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return err
	}

	payload := model.RolledDicePayload{
		PlayerName:     actor.Name,
		DiceRolls:      roll,
		PlayerDiceKept: keptDice,
		ScoredThisRoll: kept,
	}
	err = c.dispatcher.NotifyAll(ctx, game.Connections(), func(model.ConnectionID) model.Message {
		return model.Message{Type: model.MessageRolledDice, Payload: payload}
	})
	if err != nil {
		return err
	}

	c.logger.Info("rolled dice",
		slog.String("game_id", string(game.ID)),
		slog.String("player_name", actor.Name),
		slog.Any("dice_rolls", roll),
		slog.Int("score_this_turn", game.ScoreThisTurn),
	)
	return nil
}

// turnResult carries what advanceTurn banks and reports
type turnResult struct {
	banked         int
	keptDice       []int
	scoredThisRoll int
	crapout        bool
	bustRoll       []int
}

// advanceTurn is the single turn/round transition: bank the turn score,
// rotate the active player, reset the table, detect victory. All fields are
// persisted in one write before anyone is notified.
func (c *Controller) advanceTurn(ctx context.Context, game *model.Game, actor *model.GamePlayer, result turnResult) error {
	actor.Score += result.banked

	game.PlayerTurn = (game.PlayerTurn + 1) % len(game.PlayerTurns)
	if game.PlayerTurn == 0 {
		game.Round++
	}
	game.DiceRolled = nil
	game.DiceKept = nil
	game.ScoreThisTurn = 0

	endGame := actor.Score >= model.WinningScore
	if endGame {
		game.Status = model.GameStatusOver
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return err
	}

	payload := model.EndTurnPayload{
		PlayerName:     actor.Name,
		PlayerDiceKept: result.keptDice,
		ScoredThisRoll: result.scoredThisRoll,
		ScoredThisTurn: result.banked,
		Crapout:        result.crapout,
		DiceRolls:      result.bustRoll,
	}
	if endGame {
		payload.EndGame = true
	} else {
		payload.Round = game.Round
		payload.NextPlayerTurn = game.CurrentPlayerName()
	}

	err := c.dispatcher.NotifyAll(ctx, game.Connections(), func(model.ConnectionID) model.Message {
		return model.Message{Type: model.MessageEndTurn, Payload: payload}
	})
	if err != nil {
		return err
	}

	c.logger.Info("turn ended",
		slog.String("game_id", string(game.ID)),
		slog.String("player_name", actor.Name),
		slog.Int("banked", result.banked),
		slog.Bool("crapout", result.crapout),
		slog.Bool("end_game", endGame),
	)
	return nil
}

// gameForConnection resolves the actor's game via their Player document.
// A missing player or game resolves to nil rather than an error so the
// caller can report the rejection on the right message type.
func (c *Controller) gameForConnection(ctx context.Context, id model.ConnectionID) (*model.Game, error) {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if player.GameID == "" {
		return nil, nil
	}

	game, err := c.storage.GetGame(ctx, player.GameID)
	if err != nil {
		if errors.Is(err, model.ErrGameNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return game, nil
}

func (c *Controller) rollDice(n int) []int {
	roll := make([]int, n)
	for i := range roll {
		roll[i] = c.random.Intn(6) + 1
	}
	return roll
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, id model.ConnectionID, playerName string) (*model.Game, error)
	JoinGame(ctx context.Context, id model.ConnectionID, playerName string, gameID model.GameID) error
	StartGame(ctx context.Context, id model.ConnectionID) error
	TakeTurn(ctx context.Context, id model.ConnectionID, keptDice []int, endTurn bool) error
}

var _ ControllerInterface = (*Controller)(nil)
