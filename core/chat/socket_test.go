package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
)

func newScriptedSocketServer(t *testing.T, payloads []eventPayload) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != socketPath {
			t.Errorf("expected request path %q, got %q", socketPath, r.URL.Path)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		var body requestBody
		if err := conn.ReadJSON(&body); err != nil {
			t.Errorf("failed to read request: %v", err)
			return
		}
		if body.Message == "" || body.SessionID == "" {
			t.Errorf("expected message and session ID to be set, got %+v", body)
		}

		for _, payload := range payloads {
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func TestSocketStreamDeliversDecodedEvents(t *testing.T) {
	server := newScriptedSocketServer(t, []eventPayload{
		{Content: "Hel"},
		{Content: "lo, "},
		{Content: "world"},
		{Done: true},
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	stream, err := client.DialStream(context.Background(), "hello", "session-1")
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}
	defer stream.Close()

	var events []Event
	for event, err := range stream.Events(context.Background()) {
		if err != nil {
			t.Fatalf("expected no stream failure, got %v", err)
		}
		events = append(events, event)
	}

	if got := accumulate(events); got != "Hello, world" {
		t.Fatalf("expected accumulated content %q, got %q", "Hello, world", got)
	}
	if last := events[len(events)-1]; last.Kind != EventDone {
		t.Fatalf("expected terminal done event, got %q", last.Kind)
	}
}

func TestSocketStreamErrorPayloadEndsSequence(t *testing.T) {
	server := newScriptedSocketServer(t, []eventPayload{
		{Content: "partial"},
		{Error: "backend exploded"},
		{Content: "never delivered"},
	})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	stream, err := client.DialStream(context.Background(), "hello", "session-1")
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}
	defer stream.Close()

	var events []Event
	for event, err := range stream.Events(context.Background()) {
		if err != nil {
			t.Fatalf("expected no stream failure, got %v", err)
		}
		events = append(events, event)
	}

	if len(events) != 2 {
		t.Fatalf("expected two events, got %d: %v", len(events), events)
	}
	if events[1].Kind != EventError || events[1].Message != "backend exploded" {
		t.Fatalf("expected terminal error event with message, got %+v", events[1])
	}
}

func TestSocketStreamCancellationIsSilent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var body requestBody
		if err := conn.ReadJSON(&body); err != nil {
			return
		}
		if err := conn.WriteJSON(eventPayload{Content: "Hel"}); err != nil {
			return
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(WithBaseURL(server.URL))
	stream, err := client.DialStream(ctx, "hello", "session-1")
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}
	defer stream.Close()

	var events []Event
	for event, err := range stream.Events(ctx) {
		if err != nil {
			t.Fatalf("expected cancellation to be suppressed, got %v", err)
		}
		events = append(events, event)
		cancel()
	}

	if len(events) != 1 || events[0].Content != "Hel" {
		t.Fatalf("expected exactly the first delta before cancellation, got %v", events)
	}
}

func TestSocketStreamCloseIsIdempotent(t *testing.T) {
	server := newScriptedSocketServer(t, []eventPayload{{Done: true}})
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	stream, err := client.DialStream(context.Background(), "hello", "session-1")
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("expected first close to succeed, got %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("expected repeated close to be a no-op, got %v", err)
	}
}

func TestToSocketURLConvertsSchemes(t *testing.T) {
	testCases := []struct {
		baseURL  string
		expected string
	}{
		{baseURL: "http://localhost:8080", expected: "ws://localhost:8080"},
		{baseURL: "https://api.example.com", expected: "wss://api.example.com"},
		{baseURL: "ws://localhost:8080", expected: "ws://localhost:8080"},
	}

	for _, testCase := range testCases {
		got, err := toSocketURL(testCase.baseURL)
		if err != nil {
			t.Fatalf("%s: expected conversion to succeed, got %v", testCase.baseURL, err)
		}
		if got != testCase.expected {
			t.Fatalf("%s: expected %q, got %q", testCase.baseURL, testCase.expected, got)
		}
	}

	if _, err := toSocketURL("ftp://example.com"); err == nil {
		t.Fatalf("expected unsupported scheme to fail")
	}
}
