package e2e_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/farkle-go/internal/api"
	"github.com/mcoot/farkle-go/internal/cli"
	"github.com/mcoot/farkle-go/internal/dependencies/mocks"
	"github.com/mcoot/farkle-go/internal/gateway"
	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/notify"
	"github.com/mcoot/farkle-go/internal/services/game"
	"github.com/mcoot/farkle-go/internal/services/scoring"
	"github.com/mcoot/farkle-go/internal/storage/memory"
)

// testServer wires a full server over memory storage with mocked randomness
type testServer struct {
	*httptest.Server
	random *mocks.MockRandom
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	registry := gateway.NewRegistry(3 * time.Second)
	dispatcher := notify.NewDispatcher(registry, logger)
	controller := game.NewController(store, scoring.New(), dispatcher, mockClock, mockRandom, logger)
	gw := gateway.New(registry, dispatcher, controller, store, mockClock, logger)

	router := api.NewRouter(api.RouterConfig{Logger: logger, Gateway: gw})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, random: mockRandom}
}

// waitEvent reads the next event from a client, failing the test on timeout
func waitEvent(t *testing.T, c *cli.Client) cli.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		require.True(t, ok, "connection closed while waiting for event")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return cli.Event{}
	}
}

func decodePayload(t *testing.T, ev cli.Event, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ev.Payload, target))
}

func TestFullGameOverWebsockets(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	alice, err := cli.Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer alice.Close()

	bob, err := cli.Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer bob.Close()

	// Alice creates a game
	srv.random.QueueString("abcde")
	require.NoError(t, alice.CreateGame(ctx, "Alice"))

	ev := waitEvent(t, alice)
	require.Equal(t, model.MessageYouJoinedGame, ev.Type)
	var created model.YouJoinedGamePayload
	decodePayload(t, ev, &created)
	require.Equal(t, model.GameID("abcde"), created.GameID)
	require.Equal(t, []string{"Alice"}, created.Players)

	// Bob joins it
	require.NoError(t, bob.JoinGame(ctx, "Bob", "abcde"))

	ev = waitEvent(t, bob)
	require.Equal(t, model.MessageYouJoinedGame, ev.Type)
	var joined model.YouJoinedGamePayload
	decodePayload(t, ev, &joined)
	require.Equal(t, []string{"Alice", "Bob"}, joined.Players)

	ev = waitEvent(t, alice)
	require.Equal(t, model.MessageJoinedGame, ev.Type)

	// Alice starts the game with the join order preserved
	srv.random.QueueIdentityShuffle(2)
	require.NoError(t, alice.StartGame(ctx))

	for _, c := range []*cli.Client{alice, bob} {
		ev = waitEvent(t, c)
		require.Equal(t, model.MessageGameStarted, ev.Type)
		var started model.GameStartedPayload
		decodePayload(t, ev, &started)
		require.Equal(t, "Alice", started.PlayersTurn)
	}

	// Alice's opening roll
	srv.random.QueueRolls(1, 5, 2, 3, 4, 6)
	require.NoError(t, alice.RollDice(ctx, nil, false))

	for _, c := range []*cli.Client{alice, bob} {
		ev = waitEvent(t, c)
		require.Equal(t, model.MessageRolledDice, ev.Type)
		var rolled model.RolledDicePayload
		decodePayload(t, ev, &rolled)
		require.Equal(t, []int{1, 5, 2, 3, 4, 6}, rolled.DiceRolls)
	}

	// Banking 150 on a first turn is below the entry threshold
	require.NoError(t, alice.RollDice(ctx, []int{1, 5}, true))

	ev = waitEvent(t, alice)
	require.Equal(t, model.MessageFailedToRoll, ev.Type)
	var rejection model.ErrorPayload
	decodePayload(t, ev, &rejection)
	require.Equal(t, "Must score at least 750 to end your first turn", rejection.ErrorMessage)

	// Keep the pair and roll the remaining four into four 5s
	srv.random.QueueRolls(5, 5, 5, 5)
	require.NoError(t, alice.RollDice(ctx, []int{1, 5}, false))

	for _, c := range []*cli.Client{alice, bob} {
		ev = waitEvent(t, c)
		require.Equal(t, model.MessageRolledDice, ev.Type)
	}

	// Bank everything: 150 from the pair plus 1000 for four 5s
	require.NoError(t, alice.RollDice(ctx, []int{5, 5, 5, 5}, true))

	for _, c := range []*cli.Client{alice, bob} {
		ev = waitEvent(t, c)
		require.Equal(t, model.MessageEndTurn, ev.Type)
		var endTurn model.EndTurnPayload
		decodePayload(t, ev, &endTurn)
		require.Equal(t, "Alice", endTurn.PlayerName)
		require.Equal(t, 1150, endTurn.ScoredThisTurn)
		require.False(t, endTurn.Crapout)
		require.Equal(t, "Bob", endTurn.NextPlayerTurn)
	}
}

func TestValidationFailureAnswersActorOnly(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client, err := cli.Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.CreateGame(ctx, "ThisNameIsFarTooLong"))

	ev := waitEvent(t, client)
	require.Equal(t, model.MessageFailedToCreate, ev.Type)
	var rejection model.ErrorPayload
	decodePayload(t, ev, &rejection)
	require.Equal(t, "Player name must be less than 12 characters", rejection.ErrorMessage)
}
