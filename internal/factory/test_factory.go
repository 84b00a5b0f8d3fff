package factory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/farkle-go/internal/dependencies/mocks"
	"github.com/mcoot/farkle-go/internal/gateway"
	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/notify"
	"github.com/mcoot/farkle-go/internal/services/game"
	"github.com/mcoot/farkle-go/internal/services/scoring"
	"github.com/mcoot/farkle-go/internal/storage/memory"
)

// TestNotifier records deliveries instead of writing to sockets
type TestNotifier struct {
	mu   sync.Mutex
	sent map[model.ConnectionID][]model.Message
}

// NewTestNotifier creates a new TestNotifier
func NewTestNotifier() *TestNotifier {
	return &TestNotifier{sent: make(map[model.ConnectionID][]model.Message)}
}

// Send records the message for later inspection
func (n *TestNotifier) Send(ctx context.Context, id model.ConnectionID, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[id] = append(n.sent[id], msg)
	return nil
}

// MessagesTo returns everything delivered to the given connection
func (n *TestNotifier) MessagesTo(id model.ConnectionID) []model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Message(nil), n.sent[id]...)
}

// LastTo returns the most recent delivery to the given connection, or nil
func (n *TestNotifier) LastTo(id model.ConnectionID) *model.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	msgs := n.sent[id]
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[len(msgs)-1]
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Notifier   *TestNotifier
}

// NewTestApp creates an App configured for testing: memory storage, mocked
// clock and randomness, and message delivery captured in-process.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	notifier := NewTestNotifier()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	registry := gateway.NewRegistry(defaultWriteTimeout)
	dispatcher := notify.NewDispatcher(notifier, logger)
	scoringService := scoring.New()
	gameController := game.NewController(store, scoringService, dispatcher, mockClock, mockRandom, logger)
	gw := gateway.New(registry, dispatcher, gameController, store, mockClock, logger)

	app := &App{
		Storage:        store,
		Clock:          mockClock,
		Random:         mockRandom,
		ScoringService: scoringService,
		GameController: gameController,
		Registry:       registry,
		Dispatcher:     dispatcher,
		Gateway:        gw,
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Notifier:   notifier,
	}
}
