package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/farkle-go/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: complete game flow from creation to victory
func (s *IntegrationSuite) TestCompleteGameFlow() {
	// Step 1: Alice creates a game
	s.app.MockRandom.QueueString("abcde")
	game, err := s.app.GameController.CreateGame(s.ctx, "conn-a", "Alice")
	s.Require().NoError(err)
	s.Equal(model.GameID("abcde"), game.ID)

	// Step 2: Bob joins
	err = s.app.GameController.JoinGame(s.ctx, "conn-b", "Bob", "abcde")
	s.Require().NoError(err)

	joined := s.app.Notifier.LastTo("conn-b")
	s.Require().NotNil(joined)
	s.Equal(model.MessageYouJoinedGame, joined.Type)

	// Step 3: Start with the join order preserved, so Alice acts first
	s.app.MockRandom.QueueIdentityShuffle(2)
	err = s.app.GameController.StartGame(s.ctx, "conn-a")
	s.Require().NoError(err)

	for _, conn := range []model.ConnectionID{"conn-a", "conn-b"} {
		last := s.app.Notifier.LastTo(conn)
		s.Require().NotNil(last)
		s.Equal(model.MessageGameStarted, last.Type)
	}

	// Step 4: Alice rolls five 1s and a 5, keeps everything, and goes hot
	s.app.MockRandom.QueueRolls(1, 1, 1, 1, 1, 5)
	err = s.app.GameController.TakeTurn(s.ctx, "conn-a", nil, false)
	s.Require().NoError(err)

	s.app.MockRandom.QueueRolls(1, 1, 2, 3, 4, 6)
	err = s.app.GameController.TakeTurn(s.ctx, "conn-a", []int{1, 1, 1, 1, 1, 5}, false)
	s.Require().NoError(err)

	// Step 5: Alice banks the pair of 1s on top of the hot-dice score
	err = s.app.GameController.TakeTurn(s.ctx, "conn-a", []int{1, 1}, true)
	s.Require().NoError(err)

	stored, err := s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)
	// 3000 for five 1s, 50 for the 5, 200 for the final pair
	s.Equal(3250, stored.PlayerNamed("Alice").Score)
	s.Equal("Bob", stored.CurrentPlayerName())

	// Step 6: Bob busts on his first roll and banks nothing
	s.app.MockRandom.QueueRolls(2, 3, 4, 6, 6, 2)
	err = s.app.GameController.TakeTurn(s.ctx, "conn-b", nil, false)
	s.Require().NoError(err)

	stored, err = s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Equal(0, stored.PlayerNamed("Bob").Score)
	s.Equal(2, stored.Round)
	s.Equal("Alice", stored.CurrentPlayerName())

	bust := s.app.Notifier.LastTo("conn-a")
	s.Require().NotNil(bust)
	s.Equal(model.MessageEndTurn, bust.Type)
	endTurn, ok := bust.Payload.(model.EndTurnPayload)
	s.Require().True(ok)
	s.True(endTurn.Crapout)

	// Step 7: Alice rides her score past 10000
	s.mutateScore("Alice", 9000)

	s.app.MockRandom.QueueRolls(1, 1, 1, 1, 1, 1)
	err = s.app.GameController.TakeTurn(s.ctx, "conn-a", nil, false)
	s.Require().NoError(err)

	err = s.app.GameController.TakeTurn(s.ctx, "conn-a", []int{1, 1, 1, 1, 1, 1}, true)
	s.Require().NoError(err)

	stored, err = s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Equal(model.GameStatusOver, stored.Status)
	s.Equal(13000, stored.PlayerNamed("Alice").Score)

	for _, conn := range []model.ConnectionID{"conn-a", "conn-b"} {
		last := s.app.Notifier.LastTo(conn)
		s.Require().NotNil(last)
		s.Equal(model.MessageEndTurn, last.Type)
		payload, ok := last.Payload.(model.EndTurnPayload)
		s.Require().True(ok)
		s.True(payload.EndGame)
	}

	// Step 8: Nobody can act in a finished game
	err = s.app.GameController.TakeTurn(s.ctx, "conn-b", nil, false)
	s.Require().Error(err)
	s.True(model.IsValidationError(err))
}

// Test: validation failures answer the actor only and leave state untouched
func (s *IntegrationSuite) TestRejectionsDoNotLeak() {
	s.app.MockRandom.QueueString("abcde")
	_, err := s.app.GameController.CreateGame(s.ctx, "conn-a", "Alice")
	s.Require().NoError(err)
	s.Require().NoError(s.app.GameController.JoinGame(s.ctx, "conn-b", "Bob", "abcde"))

	before, err := s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)

	// Bob cannot start-act before the game starts
	err = s.app.GameController.TakeTurn(s.ctx, "conn-b", nil, false)
	s.Require().Error(err)
	s.True(model.IsValidationError(err))

	last := s.app.Notifier.LastTo("conn-b")
	s.Require().NotNil(last)
	s.Equal(model.MessageFailedToRoll, last.Type)

	// Alice heard nothing and the document did not move
	aliceMsgs := s.app.Notifier.MessagesTo("conn-a")
	s.Equal(model.MessageJoinedGame, aliceMsgs[len(aliceMsgs)-1].Type)

	after, err := s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)
	s.Equal(before.Version, after.Version)
}

// mutateScore adjusts a player's banked score directly in storage
func (s *IntegrationSuite) mutateScore(name string, score int) {
	game, err := s.app.Storage.GetGame(s.ctx, "abcde")
	s.Require().NoError(err)
	game.PlayerNamed(name).Score = score
	s.Require().NoError(s.app.Storage.SaveGame(s.ctx, game))
}
