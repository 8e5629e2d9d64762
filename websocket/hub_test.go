package websocket

import (
	"context"
	"sort"
	"testing"
	"time"

	"tts-guard-backend/internal/events"

	"github.com/google/uuid"
)

func receive(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		if !ok {
			t.Fatalf("client channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
	return WebSocketMessage{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTopicOf(t *testing.T) {
	tests := map[events.Type]string{
		events.InspectionCompleted: "inspection",
		events.PaymentRecorded:     "payment",
		events.DemoReset:           "demo",
		events.Type("plain"):       "plain",
	}
	for in, want := range tests {
		if got := TopicOf(in); got != want {
			t.Errorf("TopicOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHubRoutesEventsByTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	all := NewClient(hub, uuid.New(), nil)
	inspections := NewClient(hub, uuid.New(), nil, "Inspection")
	hub.Register(all)
	hub.Register(inspections)

	hub.Publish(events.New(events.InspectionCompleted, map[string]string{"id": "1"}))
	for _, c := range []*Client{all, inspections} {
		msg := receive(t, c)
		if msg.Type != MessageTypeEvent || msg.Topic != "inspection" {
			t.Fatalf("message = %+v", msg)
		}
		if e, ok := msg.Payload.(events.Event); !ok || e.Type != events.InspectionCompleted {
			t.Fatalf("payload = %#v", msg.Payload)
		}
	}

	hub.Publish(events.New(events.PaymentRecorded, nil))
	if msg := receive(t, all); msg.Topic != "payment" {
		t.Fatalf("unfiltered client topic = %q", msg.Topic)
	}
	expectNothing(t, inspections)

	hub.Unregister(inspections)
	if _, ok := <-inspections.Send; ok {
		t.Fatalf("unregistered client channel should be closed")
	}
	if n := hub.GetClientCount(); n != 1 {
		t.Fatalf("client count = %d, want 1", n)
	}

	cancel()
	select {
	case _, ok := <-all.Send:
		if ok {
			t.Fatalf("expected channel closed on shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("hub did not close clients on shutdown")
	}
}

func TestPublishDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Publish(events.New(events.ComplaintOpened, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a saturated hub")
	}
}

func TestClientControlMessages(t *testing.T) {
	c := NewClient(NewHub(), uuid.New(), nil)

	c.handleMessage(WebSocketMessage{
		Type:    MessageTypeSubscribe,
		Payload: map[string]interface{}{"topics": []interface{}{"complaint", "payment"}},
	})
	if msg := receive(t, c); msg.Type != MessageTypeSubscribe {
		t.Fatalf("ack type = %s", msg.Type)
	}
	got := c.Topics()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "complaint" || got[1] != "payment" {
		t.Fatalf("topics = %v", got)
	}
	if c.Wants("inspection") {
		t.Fatalf("client should not want inspection events")
	}

	c.handleMessage(WebSocketMessage{Type: MessageTypeUnsubscribe, Topic: "payment"})
	receive(t, c)
	if c.Wants("payment") || !c.Wants("complaint") {
		t.Fatalf("topics after unsubscribe = %v", c.Topics())
	}

	c.handleMessage(WebSocketMessage{Type: MessageTypePing})
	if msg := receive(t, c); msg.Type != MessageTypePong {
		t.Fatalf("ping reply = %s", msg.Type)
	}

	c.handleMessage(WebSocketMessage{Type: "CHAT"})
	if msg := receive(t, c); msg.Type != MessageTypeError {
		t.Fatalf("unknown type reply = %s", msg.Type)
	}
}
