package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/coder/websocket"

	"github.com/mcoot/farkle-go/internal/model"
)

// Event is one decoded server message
type Event struct {
	Type    model.MessageType
	Payload json.RawMessage
}

// Client is a websocket client for the game server
type Client struct {
	conn   *websocket.Conn
	events chan Event
}

// Dial connects to the server's websocket endpoint and starts reading
// server messages. The returned client's Events channel closes when the
// connection drops.
func Dial(ctx context.Context, serverURL string) (*Client, error) {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 16),
	}
	go c.readPump(ctx)
	return c, nil
}

// Events returns the channel of decoded server messages
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close closes the connection cleanly
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) readPump(ctx context.Context) {
	defer close(c.events)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		var envelope struct {
			Type    model.MessageType `json:"type"`
			Payload json.RawMessage   `json:"payload"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			continue
		}
		c.events <- Event{Type: envelope.Type, Payload: envelope.Payload}
	}
}

func (c *Client) send(ctx context.Context, action string, payload any) error {
	data, err := json.Marshal(map[string]any{
		"action":  action,
		"payload": payload,
	})
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// CreateGame asks the server to create a game with the caller as playerName
func (c *Client) CreateGame(ctx context.Context, playerName string) error {
	return c.send(ctx, "creategame", map[string]string{"name": playerName})
}

// JoinGame asks the server to add the caller to an existing game
func (c *Client) JoinGame(ctx context.Context, playerName string, gameID model.GameID) error {
	return c.send(ctx, "joingame", map[string]any{
		"name":   playerName,
		"gameId": gameID,
	})
}

// StartGame asks the server to start the caller's game
func (c *Client) StartGame(ctx context.Context) error {
	return c.send(ctx, "startgame", map[string]any{})
}

// RollDice keeps the given dice and either rolls again or banks the turn
func (c *Client) RollDice(ctx context.Context, diceKept []int, endTurn bool) error {
	return c.send(ctx, "rolldice", map[string]any{
		"diceKept": diceKept,
		"endTurn":  endTurn,
	})
}

// websocketURL converts an http(s) server URL into the ws(s) endpoint URL
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}

	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}
	return u.String(), nil
}
