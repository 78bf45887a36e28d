package sse

import (
	"testing"

	"github.com/tooltag/tooltag-backend/internal/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := newTestHub(t)

	a := hub.NewClient()
	b := hub.NewClient()
	hub.AddChannel(a, ChannelManagement)
	hub.AddChannel(b, ChannelManagement)

	hub.Broadcast(Message{Channel: ChannelManagement, Event: EventNewRequest, Data: "payload"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Outbound:
			if msg.Event != EventNewRequest {
				t.Fatalf("event = %s", msg.Event)
			}
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
}

func TestBroadcastSkipsOtherChannels(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient()
	hub.AddChannel(c, "other")

	hub.Broadcast(Message{Channel: ChannelManagement, Event: EventNewRequest})
	select {
	case msg := <-c.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	default:
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient()
	hub.AddChannel(c, ChannelManagement)

	for i := 0; i < cap(c.Outbound)+5; i++ {
		hub.Broadcast(Message{Channel: ChannelManagement, Event: EventNewRequest, Data: i})
	}
	if len(c.Outbound) != cap(c.Outbound) {
		t.Fatalf("buffer length %d, want full %d", len(c.Outbound), cap(c.Outbound))
	}
}

func TestRemoveClientUnsubscribesEverywhere(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewClient()
	hub.AddChannel(c, ChannelManagement)
	hub.AddChannel(c, "other")
	hub.RemoveClient(c)

	hub.Broadcast(Message{Channel: ChannelManagement, Event: EventNewRequest})
	hub.Broadcast(Message{Channel: "other", Event: EventNewRequest})
	select {
	case msg := <-c.Outbound:
		t.Fatalf("unexpected message after removal: %+v", msg)
	default:
	}
}
