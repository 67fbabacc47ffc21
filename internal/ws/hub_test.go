package ws

import (
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestClient(topic string) *Client {
	return &Client{topic: topic, send: make(chan []byte, 4)}
}

func TestHub_BroadcastOnlyToTopic(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	go h.Run()
	defer h.Stop()

	quizID := uuid.New()
	a := newTestClient(QuizTopic(quizID))
	b := newTestClient(QuizTopic(uuid.New()))
	h.Register(a)
	h.Register(b)
	waitClients(t, h, QuizTopic(quizID), 1)

	NewNotifier(h).QuizReady(quizID, 5)

	select {
	case msg := <-a.send:
		var evt QuizReadyEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if evt.Type != "quiz_ready" || evt.QuizID != quizID.String() || evt.QuestionCount != 5 {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber did not receive event")
	}

	select {
	case <-b.send:
		t.Fatalf("other topic must not receive event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	go h.Run()
	defer h.Stop()

	c := newTestClient("user:x")
	h.Register(c)
	waitClients(t, h, "user:x", 1)

	h.Unregister(c)
	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel not closed")
	}
	if h.ClientCount("user:x") != 0 {
		t.Fatalf("expected no clients left")
	}
}

func TestNilHubIsSafe(t *testing.T) {
	var h *Hub
	h.Publish("t", map[string]string{"a": "b"})
	h.Broadcast("t", nil)
	if h.ClientCount("t") != 0 {
		t.Fatalf("expected zero")
	}
	var n *Notifier
	n.QuizReady(uuid.New(), 1)
}

func waitClients(t *testing.T, h *Hub, topic string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount(topic) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients on %s", n, topic)
		}
		time.Sleep(time.Millisecond)
	}
}
