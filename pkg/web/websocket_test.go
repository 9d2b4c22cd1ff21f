package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"github.com/dbehnke/rsc-bcjr/pkg/vectors"
)

func testSet() *database.VectorSet {
	return &database.VectorSet{
		ID:          "set-1",
		Feedback:    "013",
		Forward:     []string{"015"},
		FrameLength: 16,
		Operator:    "max-star",
		Variant:     "std",
		Precision:   "float32",
		Vectors:     make([]database.ReferenceVector, 3),
	}
}

// dialHub starts hub behind a test server and connects one client
func dialHub(t *testing.T, ctx context.Context, hub *WebSocketHub) *websocket.Conn {
	t.Helper()
	go hub.Run(ctx)

	server := httptest.NewServer(hub.Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client not registered, count %d", hub.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	return event
}

func TestWebSocketHub_Run(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	// Broadcast should not block or panic with no clients
	hub.Broadcast(Event{Type: "test", Data: map[string]interface{}{"message": "hello"}})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}
}

func TestWebSocketHub_SetGenerated(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	hub := NewWebSocketHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dialHub(t, ctx, hub)
	hub.SetGenerated(testSet())

	event := readEvent(t, conn)
	if event.Type != EventSetGenerated {
		t.Fatalf("Expected %s, got %s", EventSetGenerated, event.Type)
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
	if event.Data["code"] != "013/015" || event.Data["set"] != "set-1" {
		t.Errorf("unexpected event data %v", event.Data)
	}
	// JSON numbers decode as float64
	if event.Data["vectors"] != float64(3) {
		t.Errorf("Expected 3 vectors, got %v", event.Data["vectors"])
	}
}

func TestWebSocketHub_SetVerified(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	hub := NewWebSocketHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dialHub(t, ctx, hub)

	rep := vectors.Report{Checked: 2, Failed: 1, MaxDiff: 0.5, Worst: 1, Diffs: []float64{0, 0.5}}
	hub.SetVerified(testSet(), rep, errors.New("boom"))

	event := readEvent(t, conn)
	if event.Type != EventSetVerified {
		t.Fatalf("Expected %s, got %s", EventSetVerified, event.Type)
	}
	if event.Data["ok"] != false || event.Data["error"] != "boom" {
		t.Errorf("unexpected outcome %v", event.Data)
	}
	diffs, ok := event.Data["diffs"].([]interface{})
	if !ok || len(diffs) != 2 || diffs[1] != 0.5 {
		t.Errorf("unexpected diffs %v", event.Data["diffs"])
	}
}

func TestWebSocketHub_Unregister(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	hub := NewWebSocketHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dialHub(t, ctx, hub)
	_ = conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client not unregistered, count %d", hub.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEvent_Marshal(t *testing.T) {
	event := Event{
		Type:      EventSetVerified,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"set": "abc",
			"ok":  true,
		},
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}
	if !strings.Contains(string(data), EventSetVerified) {
		t.Error("Marshaled data doesn't contain event type")
	}
}
