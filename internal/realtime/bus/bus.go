// Package bus fans SSE messages out across instances. With a single
// instance the hub alone is enough; the bus exists so several replicas
// behind one load balancer all see every event.
package bus

import (
	"context"

	"github.com/tooltag/tooltag-backend/internal/sse"
)

type Bus interface {
	Publish(ctx context.Context, msg sse.Message) error
	StartForwarder(ctx context.Context, onMsg func(m sse.Message)) error
	Close() error
}
