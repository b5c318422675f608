package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"flowdesk/models"
)

// readFrame pops the next queued frame for a connection registered
// without a live socket.
func readFrame(t *testing.T, c *Connection) Event {
	t.Helper()
	select {
	case frame := <-c.send:
		var e Event
		if err := json.Unmarshal(frame, &e); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return e
	default:
		t.Fatal("no frame queued")
		return Event{}
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()

	a := hub.Register("user-1", nil)
	b := hub.Register("user-1", nil)
	c := hub.Register("user-2", nil)

	if got := len(hub.ConnectionsFor("user-1")); got != 2 {
		t.Errorf("user-1 connections = %d, want 2", got)
	}
	if got := len(hub.ConnectionsFor("user-2")); got != 1 {
		t.Errorf("user-2 connections = %d, want 1", got)
	}

	hub.Unregister(a)
	if got := len(hub.ConnectionsFor("user-1")); got != 1 {
		t.Errorf("after unregister, user-1 connections = %d, want 1", got)
	}

	hub.Unregister(b)
	hub.Unregister(c)
	if got := hub.ConnectionsFor("user-1"); got != nil {
		t.Errorf("expected user entry pruned, got %v", got)
	}
}

func TestRegisterSendsConnectedAck(t *testing.T) {
	hub := NewHub()
	c := hub.Register("user-1", nil)

	if e := readFrame(t, c); e.Type != EventConnected {
		t.Errorf("first frame type = %q, want %q", e.Type, EventConnected)
	}
}

func TestPublishNotificationReachesAllConnections(t *testing.T) {
	hub := NewHub()
	a := hub.Register("user-1", nil)
	b := hub.Register("user-1", nil)
	other := hub.Register("user-2", nil)

	// Drain the connected acks.
	readFrame(t, a)
	readFrame(t, b)
	readFrame(t, other)

	hub.PublishNotification("user-1", &models.Notification{ID: "n-1", Title: "Hi"})

	for _, c := range []*Connection{a, b} {
		if e := readFrame(t, c); e.Type != EventNotification {
			t.Errorf("frame type = %q, want %q", e.Type, EventNotification)
		}
	}
	select {
	case <-other.send:
		t.Error("user-2 must not receive user-1 events")
	default:
	}
}

func TestPublishUnreadCount(t *testing.T) {
	hub := NewHub()
	c := hub.Register("user-1", nil)
	readFrame(t, c)

	hub.PublishUnreadCount("user-1", 4)

	e := readFrame(t, c)
	if e.Type != EventUnreadCount {
		t.Fatalf("frame type = %q, want %q", e.Type, EventUnreadCount)
	}
	payload, ok := e.Data.(map[string]any)
	if !ok || payload["count"] != float64(4) {
		t.Errorf("unexpected payload %v", e.Data)
	}
}

func TestSlowConnectionDropsFrames(t *testing.T) {
	hub := NewHub()
	c := hub.Register("user-1", nil)

	// Saturate the buffer; publishes past capacity must not block.
	for i := 0; i < sendBuffer*2; i++ {
		hub.PublishUnreadCount("user-1", int64(i))
	}

	if got := len(c.send); got != sendBuffer {
		t.Errorf("queued frames = %d, want buffer capacity %d", got, sendBuffer)
	}
}

func TestConcurrentRegisterAndPublish(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := hub.Register("user-1", nil)
			hub.PublishUnreadCount("user-1", 1)
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ConnectionsFor("user-1"); got != nil {
		t.Errorf("expected no connections left, got %v", got)
	}
}
