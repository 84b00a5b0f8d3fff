package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mcoot/farkle-go/internal/dependencies/clock"
	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/notify"
	"github.com/mcoot/farkle-go/internal/services/game"
	"github.com/mcoot/farkle-go/internal/storage"
)

// disconnectTimeout bounds the cleanup writes that run after the request
// context is gone
const disconnectTimeout = 5 * time.Second

// frame is the inbound wire envelope
type frame struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type createGamePayload struct {
	Name string `json:"name"`
}

type joinGamePayload struct {
	Name   string       `json:"name"`
	GameID model.GameID `json:"gameId"`
}

type rollDicePayload struct {
	DiceKept []int `json:"diceKept"`
	EndTurn  bool  `json:"endTurn"`
}

// Gateway owns the websocket lifecycle: it assigns connection ids, maintains
// the pending Player document for each socket, and dispatches inbound frames
// to the game controller.
type Gateway struct {
	registry   *Registry
	dispatcher *notify.Dispatcher
	engine     game.ControllerInterface
	storage    storage.Storage
	clock      clock.Clock
	logger     *slog.Logger
}

// New creates a new Gateway
func New(
	registry *Registry,
	dispatcher *notify.Dispatcher,
	engine game.ControllerInterface,
	storage storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		registry:   registry,
		dispatcher: dispatcher,
		engine:     engine,
		storage:    storage,
		clock:      clock,
		logger:     logger.With(slog.String("component", "gateway")),
	}
}

// ServeHTTP upgrades the request to a websocket and runs its read loop until
// the peer goes away
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		g.logger.Error("websocket accept failed",
			slog.String("error", err.Error()),
		)
		return
	}

	id := model.ConnectionID(uuid.NewString())
	ctx := r.Context()

	if err := g.connect(ctx, id, conn); err != nil {
		g.logger.Error("failed to register connection",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()),
		)
		_ = conn.Close(websocket.StatusInternalError, "failed to register connection")
		return
	}
	defer g.disconnect(id, conn)

	g.logger.Info("connection opened",
		slog.String("connection_id", string(id)),
	)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					g.logger.Info("connection read failed",
						slog.String("connection_id", string(id)),
						slog.String("error", err.Error()),
					)
				}
			}
			return
		}
		g.handleFrame(ctx, id, data)
	}
}

// connect records the socket as a pending player before it can act
func (g *Gateway) connect(ctx context.Context, id model.ConnectionID, conn *websocket.Conn) error {
	player := &model.Player{
		ConnectionID: id,
		Status:       model.PlayerStatusPending,
		CreatedOn:    g.clock.Now(),
	}
	if err := g.storage.SavePlayer(ctx, player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	g.registry.Register(id, conn)
	return nil
}

// disconnect tears the connection down: once it runs, the id is stale and
// fan-out to it is skipped rather than failed
func (g *Gateway) disconnect(id model.ConnectionID, conn *websocket.Conn) {
	g.registry.Unregister(id)

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := g.storage.DeletePlayer(ctx, id); err != nil {
		g.logger.Warn("failed to delete player on disconnect",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	_ = conn.CloseNow()
	g.logger.Info("connection closed",
		slog.String("connection_id", string(id)),
	)
}

// handleFrame parses one inbound frame and dispatches it to the controller.
// Frame-level failures answer the sender on game/failedtoprocess; action
// rejections have already been answered by the controller.
func (g *Gateway) handleFrame(ctx context.Context, id model.ConnectionID, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		g.rejectFrame(ctx, id, "Malformed message")
		return
	}

	var err error
	switch f.Action {
	case "creategame":
		var p createGamePayload
		if jsonErr := json.Unmarshal(f.Payload, &p); jsonErr != nil {
			g.rejectFrame(ctx, id, "Malformed message")
			return
		}
		_, err = g.engine.CreateGame(ctx, id, p.Name)
	case "joingame":
		var p joinGamePayload
		if jsonErr := json.Unmarshal(f.Payload, &p); jsonErr != nil {
			g.rejectFrame(ctx, id, "Malformed message")
			return
		}
		err = g.engine.JoinGame(ctx, id, p.Name, p.GameID)
	case "startgame":
		err = g.engine.StartGame(ctx, id)
	case "rolldice":
		var p rollDicePayload
		if jsonErr := json.Unmarshal(f.Payload, &p); jsonErr != nil {
			g.rejectFrame(ctx, id, "Malformed message")
			return
		}
		err = g.engine.TakeTurn(ctx, id, p.DiceKept, p.EndTurn)
	case "":
		g.rejectFrame(ctx, id, "Action must be passed in")
		return
	default:
		g.rejectFrame(ctx, id, fmt.Sprintf("Unknown action '%s'", f.Action))
		return
	}

	if err == nil || model.IsValidationError(err) {
		return
	}

	g.logger.Error("action failed",
		slog.String("connection_id", string(id)),
		slog.String("action", f.Action),
		slog.String("error", err.Error()),
	)
	g.rejectFrame(ctx, id, "Internal server error")
}

func (g *Gateway) rejectFrame(ctx context.Context, id model.ConnectionID, message string) {
	err := g.dispatcher.NotifyOne(ctx, id, model.Message{
		Type:    model.MessageFailedToProcess,
		Payload: model.ErrorPayload{ErrorMessage: message},
	})
	if err != nil {
		g.logger.Error("failed to answer rejected frame",
			slog.String("connection_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}
