// internal/common/session/store.go
package session

import (
	"context"
	"errors"

	"mic-ai-service/internal/models"
)

var ErrEmptySessionID = errors.New("SESSION_ID_EMPTY")

// Store keeps chat histories keyed by session id.
//
// Guarantees shared by all implementations:
//   - Safe for concurrent use by multiple goroutines.
//   - Turns passed to one Append call stay contiguous and in order.
//   - No ordering is promised between concurrent calls on the same id; the
//     history reflects whichever Append reached the store last.
//   - Sessions are never explicitly destroyed. MemoryStore keeps them for the
//     life of the process, RedisStore until the configured TTL lapses.
type Store interface {
	// GetOrCreate returns a snapshot of the session, creating it when unknown.
	GetOrCreate(ctx context.Context, id string) (*models.ChatSession, error)
	// Append adds turns to the end of the session history, creating the session if needed.
	Append(ctx context.Context, id string, turns ...models.Turn) error
	// Trim drops the oldest turns so that at most keep remain.
	Trim(ctx context.Context, id string, keep int) error
}
