package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/farkle-go/internal/model"
	"github.com/mcoot/farkle-go/internal/notify"
)

// Registry tracks live websocket connections by connection id and is the
// delivery backend for outbound notifications. A connection id that is not
// registered is stale by definition.
type Registry struct {
	mu           sync.RWMutex
	conns        map[model.ConnectionID]*websocket.Conn
	writeTimeout time.Duration
}

// Ensure Registry implements Notifier
var _ notify.Notifier = (*Registry)(nil)

// NewRegistry creates a new Registry
func NewRegistry(writeTimeout time.Duration) *Registry {
	return &Registry{
		conns:        make(map[model.ConnectionID]*websocket.Conn),
		writeTimeout: writeTimeout,
	}
}

// Register adds a connection under the given id
func (r *Registry) Register(id model.ConnectionID, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

// Unregister removes the connection for the given id, if any
func (r *Registry) Unregister(id model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Len returns the number of live connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Send writes one message to the given connection. An unknown id or a closed
// socket reports ErrStaleConnection; other write failures are transient.
func (r *Registry) Send(ctx context.Context, id model.ConnectionID, msg model.Message) error {
	r.mu.RLock()
	conn := r.conns[id]
	r.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("connection %s: %w", id, notify.ErrStaleConnection)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		if websocket.CloseStatus(err) != -1 {
			return fmt.Errorf("connection %s closed: %w", id, notify.ErrStaleConnection)
		}
		return fmt.Errorf("write to connection %s: %w", id, err)
	}
	return nil
}
