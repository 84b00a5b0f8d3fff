package storage

import (
	"context"
	"errors"

	"github.com/mcoot/farkle-go/internal/model"
)

// ErrVersionConflict is returned by SaveGame when the game's Version no
// longer matches the stored document. It signals a lost race with another
// action on the same game; the action may be retried from a fresh read.
var ErrVersionConflict = errors.New("game version conflict")

// Storage defines the interface for data persistence.
//
// Games carry an optimistic-concurrency token (Game.Version): CreateGame is
// a conditional create that fails with model.ErrGameExists if the id is
// taken, and SaveGame only succeeds when the caller's Version matches the
// stored document, bumping it on success.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.ConnectionID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.ConnectionID) error

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
}
