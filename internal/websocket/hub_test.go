package websocket

import (
	"testing"
	"time"

	"jit-learning-be/internal/pkg/logger"

	"github.com/google/uuid"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestBroadcastDeliversToRegisteredClient(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- client
	waitFor(t, func() bool { return hub.clientCount(userID) == 1 })

	hub.BroadcastToUser(userID, "progress", map[string]int{"streak": 3})

	select {
	case msg := <-client.Send:
		if len(msg) == 0 {
			t.Error("empty broadcast payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestSlowConsumerIsDroppedWithoutKillingTheHub(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()

	userID := uuid.New()
	// Unbuffered channel with no reader: the first broadcast cannot be
	// queued, so the hub must drop the client.
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}
	hub.register <- slow
	waitFor(t, func() bool { return hub.clientCount(userID) == 1 })

	hub.BroadcastToUser(userID, "progress", map[string]int{"streak": 1})
	waitFor(t, func() bool { return hub.clientCount(userID) == 0 })

	// The dropped client's channel is closed exactly once; a second
	// broadcast must still be serviced by a live hub.
	if _, open := <-slow.Send; open {
		t.Error("expected the dropped client's send channel to be closed")
	}

	fresh := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	hub.register <- fresh
	waitFor(t, func() bool { return hub.clientCount(userID) == 1 })

	hub.BroadcastToUser(userID, "progress", map[string]int{"streak": 2})
	select {
	case <-fresh.Send:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped delivering after dropping a slow consumer")
	}
}
