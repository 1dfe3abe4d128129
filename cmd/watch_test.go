package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWatchPrintsEventsAndSendsUtterances(t *testing.T) {
	received := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg map[string]string
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg["type"] + ":" + msg["text"]
		}

		conn.WriteJSON(map[string]interface{}{
			"type":      "complaint_submitted",
			"timestamp": "2023-12-01T10:00:00Z",
			"data":      map[string]string{"id": "WS20231201-0001"},
		})
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	var out bytes.Buffer

	err := watch(context.Background(), url, []string{"No water in Sector 15"}, &out)
	if err == nil {
		t.Error("Expected an error once the server closed the feed")
	}

	if got := <-received; got != "utterance:No water in Sector 15" {
		t.Errorf("Unexpected message sent: %s", got)
	}
	if !strings.Contains(out.String(), "complaint_submitted") || !strings.Contains(out.String(), "WS20231201-0001") {
		t.Errorf("Event not printed: %q", out.String())
	}
}

func TestWatchDialFailure(t *testing.T) {
	var out bytes.Buffer
	if err := watch(context.Background(), "ws://127.0.0.1:1/ws", nil, &out); err == nil {
		t.Error("Expected dial error")
	}
}

func TestWatchedEventDecoding(t *testing.T) {
	var event watchedEvent
	payload := `{"type":"call_status","timestamp":"t","data":{"status":"connected"}}`
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		t.Fatal(err)
	}
	if event.Type != "call_status" || !strings.Contains(string(event.Data), "connected") {
		t.Errorf("Unexpected event %+v", event)
	}
}
