package cli

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CLISuite struct {
	suite.Suite
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) TestWebsocketURL() {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"http scheme", "http://localhost:8080", "ws://localhost:8080/ws"},
		{"https scheme", "https://farkle.example.com", "wss://farkle.example.com/ws"},
		{"already ws", "ws://localhost:8080/ws", "ws://localhost:8080/ws"},
		{"trailing slash", "http://localhost:8080/", "ws://localhost:8080/ws"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := websocketURL(tt.input)
			s.Require().NoError(err)
			s.Equal(tt.expected, got)
		})
	}
}

func (s *CLISuite) TestWebsocketURLRejectsUnknownScheme() {
	_, err := websocketURL("ftp://localhost")
	s.Error(err)
}

func (s *CLISuite) TestParseDice() {
	dice, err := parseDice([]string{"1", "5", "5"})
	s.Require().NoError(err)
	s.Equal([]int{1, 5, 5}, dice)

	empty, err := parseDice(nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *CLISuite) TestParseDiceRejectsBadInput() {
	_, err := parseDice([]string{"7"})
	s.Error(err)

	_, err = parseDice([]string{"one"})
	s.Error(err)
}
