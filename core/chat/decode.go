package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const eventPrefix = "data:"

// maxLineBytes bounds a single protocol line. Reply deltas are short; a line
// this large is a malformed payload, not a transport fault.
const maxLineBytes = 1024 * 1024

type eventPayload struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   string `json:"error"`
}

// decodeEvents reads the line-delimited event protocol from r and yields
// decoded events in arrival order. Line reassembly is byte-oriented, so chunk
// boundaries falling mid-line or mid-rune never affect the decoded result.
//
// Blank lines and lines without the event prefix are skipped. A payload
// carrying an error field or a done flag ends the sequence, as does a
// malformed payload. Context cancellation ends the sequence silently.
func decodeEvents(ctx context.Context, r io.Reader, yield func(Event, error) bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, eventPrefix) {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
		if payload == "" {
			continue
		}

		var body eventPayload
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			yield(Event{}, &DecodeError{Payload: payload, Err: err})
			return
		}

		if !emitPayload(body, yield) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			logger.DebugContext(ctx, "stream read cancelled")
			return
		}
		if errors.Is(err, bufio.ErrTooLong) {
			yield(Event{}, &DecodeError{Err: err})
			return
		}
		yield(Event{}, &TransportError{Err: err})
	}
}

// emitPayload yields the events a single payload carries. It reports whether
// the sequence should continue.
func emitPayload(body eventPayload, yield func(Event, error) bool) bool {
	if body.Error != "" {
		yield(Event{Kind: EventError, Message: body.Error}, nil)
		return false
	}

	if body.Content != "" {
		if !yield(Event{Kind: EventContent, Content: body.Content}, nil) {
			return false
		}
	}

	if body.Done {
		yield(Event{Kind: EventDone}, nil)
		return false
	}

	return true
}
