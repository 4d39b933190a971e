package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

const socketPath = "/chat/socket"

// DialStream opens the WebSocket variant of the chat stream. The request is
// written as the first message on the connection; the backend answers with
// the same event payloads the line protocol uses, one JSON message each.
func (c *Client) DialStream(ctx context.Context, message string, sessionID string) (*SocketStream, error) {
	socketURL, err := toSocketURL(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL+socketPath, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to open socket connection: %w", err)}
	}

	if err := conn.WriteJSON(requestBody{Message: message, SessionID: sessionID}); err != nil {
		conn.Close()
		return nil, &TransportError{Err: fmt.Errorf("failed to send request: %w", err)}
	}

	return &SocketStream{conn: conn}, nil
}

// SocketStream is an open WebSocket chat stream.
type SocketStream struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// Events yields decoded events in arrival order until a done payload, an
// error payload, or the connection closing. Cancelling ctx closes the
// connection and ends the sequence silently.
func (s *SocketStream) Events(ctx context.Context) func(func(Event, error) bool) {
	return func(yield func(Event, error) bool) {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				s.Close()
			case <-done:
			}
		}()

		defer s.Close()
		for {
			var body eventPayload
			if err := s.conn.ReadJSON(&body); err != nil {
				if ctx.Err() != nil {
					logger.DebugContext(ctx, "socket stream cancelled")
					return
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}

				var syntaxErr *json.SyntaxError
				var typeErr *json.UnmarshalTypeError
				if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
					yield(Event{}, &DecodeError{Err: err})
					return
				}

				yield(Event{}, &TransportError{Err: err})
				return
			}

			if !emitPayload(body, yield) {
				return
			}
		}
	}
}

// Close closes the underlying connection. It is safe to call repeatedly.
func (s *SocketStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

func toSocketURL(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	return parsed.String(), nil
}
