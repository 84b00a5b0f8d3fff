package notify

import (
	"context"
	"errors"

	"github.com/mcoot/farkle-go/internal/model"
)

// ErrStaleConnection marks a recipient whose transport session no longer
// exists. Delivery failure to a stale connection is expected and harmless;
// dispatch logs it and excludes it from the batch outcome.
var ErrStaleConnection = errors.New("stale connection")

// Notifier attempts one best-effort delivery of a message to a connection.
// Implementations return ErrStaleConnection (possibly wrapped) when the
// target is permanently gone, and any other error for transient failures.
type Notifier interface {
	Send(ctx context.Context, id model.ConnectionID, msg model.Message) error
}
