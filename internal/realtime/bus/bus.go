package bus

import (
	"context"

	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

// Bus fans SSE messages out across server instances. Every instance runs a
// forwarder that replays bus traffic into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
