package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anavrin-labs/parley-core/core/chat"
)

func TestSendAppendsUserAndAssistantMessages(t *testing.T) {
	server := newScriptedChatServer(t, []string{
		`data: {"content":"Sure"}`,
		`data: {"content":", done"}`,
		`data: {"done":true}`,
	})
	defer server.Close()

	engine := New(WithChatClient(chat.NewClient(chat.WithBaseURL(server.URL))))
	defer engine.Close()

	if err := engine.Send(context.Background(), "order a pizza"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	messages := engine.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Content != "order a pizza" {
		t.Fatalf("unexpected user message %+v", messages[0])
	}
	if messages[1].Role != RoleAssistant || messages[1].Content != "Sure, done" {
		t.Fatalf("unexpected assistant message %+v", messages[1])
	}
	if messages[1].Timestamp.Before(messages[0].Timestamp) {
		t.Fatalf("expected assistant message to follow user message in time")
	}
}

func TestSendRemoteErrorReplacesPlaceholder(t *testing.T) {
	server := newScriptedChatServer(t, []string{
		`data: {"content":"Half a rep"}`,
		`data: {"error":"boom"}`,
	})
	defer server.Close()

	engine := New(WithChatClient(chat.NewClient(chat.WithBaseURL(server.URL))))
	defer engine.Close()

	err := engine.Send(context.Background(), "order a pizza")
	var remoteErr *chat.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected a remote error, got %v", err)
	}

	messages := engine.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[1].Content != "Error: boom" {
		t.Fatalf("expected placeholder to hold the error text, got %q", messages[1].Content)
	}
}

func TestSendTransportErrorReplacesPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	engine := New(WithChatClient(chat.NewClient(chat.WithBaseURL(server.URL))))
	defer engine.Close()

	err := engine.Send(context.Background(), "order a pizza")
	var transportErr *chat.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected a transport error, got %v", err)
	}

	messages := engine.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[1].Content != fmt.Sprintf("Error: %v", transportErr) {
		t.Fatalf("expected placeholder to hold the error text, got %q", messages[1].Content)
	}
}

func TestSendCancellationLeavesPlaceholderContent(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: {\"content\":\"Working on\"}\n")
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	engine := New(WithChatClient(chat.NewClient(chat.WithBaseURL(server.URL))))
	defer engine.Close()

	done := make(chan error, 1)
	go func() {
		done <- engine.Send(context.Background(), "order a pizza")
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		messages := engine.Messages()
		if len(messages) == 2 && messages[1].Content == "Working on" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for the first delta, have %+v", messages)
		}
		time.Sleep(5 * time.Millisecond)
	}

	engine.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected a cancelled send to return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for send to return")
	}

	messages := engine.Messages()
	if messages[1].Content != "Working on" {
		t.Fatalf("expected partial content to survive cancellation, got %q", messages[1].Content)
	}
}

func TestResetClearsLedger(t *testing.T) {
	server := newScriptedChatServer(t, []string{
		`data: {"content":"Sure"}`,
		`data: {"done":true}`,
	})
	defer server.Close()

	engine := New(WithChatClient(chat.NewClient(chat.WithBaseURL(server.URL))))
	defer engine.Close()

	if err := engine.Send(context.Background(), "order a pizza"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	if len(engine.Messages()) == 0 {
		t.Fatalf("expected messages before reset")
	}

	engine.Reset()

	if got := engine.Messages(); len(got) != 0 {
		t.Fatalf("expected an empty ledger after reset, got %+v", got)
	}
}
