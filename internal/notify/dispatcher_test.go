package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/testutil"
)

// fakeNotifier records deliveries and fails configured connections
type fakeNotifier struct {
	mu       sync.Mutex
	sent     map[model.ConnectionID][]model.Message
	stale    map[model.ConnectionID]bool
	failWith map[model.ConnectionID]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		sent:     make(map[model.ConnectionID][]model.Message),
		stale:    make(map[model.ConnectionID]bool),
		failWith: make(map[model.ConnectionID]error),
	}
}

func (f *fakeNotifier) Send(ctx context.Context, id model.ConnectionID, msg model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale[id] {
		return ErrStaleConnection
	}
	if err := f.failWith[id]; err != nil {
		return err
	}
	f.sent[id] = append(f.sent[id], msg)
	return nil
}

func (f *fakeNotifier) sentTo(id model.ConnectionID) []model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[id]
}

type DispatcherSuite struct {
	suite.Suite
	notifier   *fakeNotifier
	dispatcher *Dispatcher
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.notifier = newFakeNotifier()
	s.dispatcher = NewDispatcher(s.notifier, testutil.NopLogger())
	s.ctx = context.Background()
}

func constPayload(msg model.Message) func(model.ConnectionID) model.Message {
	return func(model.ConnectionID) model.Message { return msg }
}

func (s *DispatcherSuite) TestNotifyAllDeliversToEveryRecipient() {
	recipients := []model.ConnectionID{"a", "b", "c"}
	msg := model.Message{Type: model.MessageGameStarted}

	err := s.dispatcher.NotifyAll(s.ctx, recipients, constPayload(msg))
	s.Require().NoError(err)

	for _, id := range recipients {
		s.Len(s.notifier.sentTo(id), 1)
	}
}

func (s *DispatcherSuite) TestNotifyAllPerRecipientPayloads() {
	recipients := []model.ConnectionID{"joiner", "other"}

	err := s.dispatcher.NotifyAll(s.ctx, recipients, func(id model.ConnectionID) model.Message {
		if id == "joiner" {
			return model.Message{Type: model.MessageYouJoinedGame}
		}
		return model.Message{Type: model.MessageJoinedGame}
	})
	s.Require().NoError(err)

	s.Equal(model.MessageYouJoinedGame, s.notifier.sentTo("joiner")[0].Type)
	s.Equal(model.MessageJoinedGame, s.notifier.sentTo("other")[0].Type)
}

func (s *DispatcherSuite) TestNotifyAllExcludesStaleConnections() {
	s.notifier.stale["gone"] = true
	recipients := []model.ConnectionID{"a", "gone", "b"}

	err := s.dispatcher.NotifyAll(s.ctx, recipients, constPayload(model.Message{Type: model.MessageEndTurn}))
	s.Require().NoError(err)

	s.Len(s.notifier.sentTo("a"), 1)
	s.Len(s.notifier.sentTo("b"), 1)
	s.Empty(s.notifier.sentTo("gone"))
}

func (s *DispatcherSuite) TestNotifyAllFailsBatchOnTransientError() {
	s.notifier.failWith["broken"] = errors.New("write timeout")
	recipients := []model.ConnectionID{"a", "broken", "b"}

	err := s.dispatcher.NotifyAll(s.ctx, recipients, constPayload(model.Message{Type: model.MessageEndTurn}))
	s.Require().Error(err)

	// Successful deliveries are not rolled back
	s.Len(s.notifier.sentTo("a"), 1)
	s.Len(s.notifier.sentTo("b"), 1)
}

func (s *DispatcherSuite) TestNotifyAllEmptyRoster() {
	err := s.dispatcher.NotifyAll(s.ctx, nil, constPayload(model.Message{}))
	s.NoError(err)
}

func (s *DispatcherSuite) TestNotifyOneStaleIsNotAnError() {
	s.notifier.stale["gone"] = true

	err := s.dispatcher.NotifyOne(s.ctx, "gone", model.Message{Type: model.MessageFailedToRoll})
	s.NoError(err)
}

func (s *DispatcherSuite) TestNotifyOneTransientErrorSurfaces() {
	s.notifier.failWith["broken"] = errors.New("write timeout")

	err := s.dispatcher.NotifyOne(s.ctx, "broken", model.Message{Type: model.MessageFailedToRoll})
	s.Error(err)
}
