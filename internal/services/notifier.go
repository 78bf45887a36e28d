package services

import (
	"context"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/realtime/bus"
	"github.com/tooltag/tooltag-backend/internal/sse"
)

// Notifier pushes domain events to connected dashboards.
type Notifier interface {
	NotifyNewRequest(ctx context.Context, payload any)
}

type sseNotifier struct {
	hub *sse.Hub
	bus bus.Bus
	log *logger.Logger
}

// NewNotifier wires the hub and an optional cross-instance bus. When a bus is
// present, events go through it only; the forwarder echoes them back into the
// local hub, so publishing locally as well would double-deliver.
func NewNotifier(hub *sse.Hub, b bus.Bus, log *logger.Logger) Notifier {
	return &sseNotifier{hub: hub, bus: b, log: log.With("service", "Notifier")}
}

func (n *sseNotifier) NotifyNewRequest(ctx context.Context, payload any) {
	msg := sse.Message{
		Channel: sse.ChannelManagement,
		Event:   sse.EventNewRequest,
		Data:    payload,
	}
	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("Failed to publish SSE message to bus; falling back to local hub", "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	n.hub.Broadcast(msg)
}
