package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/anavrin-labs/parley-core/core/chat"
	"github.com/anavrin-labs/parley-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Send runs one text-mode turn: the text is appended to the ledger as a user
// message together with an empty assistant placeholder, and the streamed
// reply grows the placeholder delta-by-delta. A stream failure replaces the
// placeholder's content with a formatted error string and is also returned.
// Cancellation through Stop, Reset, or a superseding turn leaves the
// placeholder as it was and returns nil.
//
// Send blocks until the stream ends. Issuing a new turn while one is in
// flight invalidates the former; its remaining events are discarded.
func (e *Engine) Send(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "send turn")
	defer span.End()
	span.SetAttributes(attribute.String("request.session_id", e.session.ID))

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return fmt.Errorf("voice conversation active in state %q", e.state)
	}
	e.mu.Unlock()

	token := e.turns.begin()

	streamCtx, cancel := context.WithCancel(ctx)
	gen := e.trackStream(cancel)
	defer e.releaseStream(gen, cancel)

	e.ledger.append(RoleUser, text)
	placeholder := e.ledger.openAssistantMessage()
	defer e.ledger.closeStream(placeholder.ID)

	stream := e.chatClient.OpenStream(text, e.session.ID)
	for event, err := range stream.Events(streamCtx) {
		if !e.turns.isLive(token) {
			return nil
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if replaceErr := e.ledger.replaceContent(placeholder.ID, formatMessageError(err)); replaceErr != nil {
				logger.WarnContext(ctx, fmt.Sprintf("failed to record stream error: %v", replaceErr))
			}
			return err
		}

		switch event.Kind {
		case chat.EventContent:
			if appendErr := e.ledger.appendContent(placeholder.ID, event.Content); appendErr != nil {
				logger.WarnContext(ctx, fmt.Sprintf("dropping stream delta: %v", appendErr))
			}
			e.emit(events.NewAssistantResponseSegment(event.Content))
		case chat.EventDone:
			span.AddEvent("stream done")
		case chat.EventError:
			remoteErr := &chat.RemoteError{Message: event.Message}
			span.RecordError(remoteErr)
			span.SetStatus(codes.Error, remoteErr.Error())
			if replaceErr := e.ledger.replaceContent(placeholder.ID, formatMessageError(remoteErr)); replaceErr != nil {
				logger.WarnContext(ctx, fmt.Sprintf("failed to record stream error: %v", replaceErr))
			}
			return remoteErr
		}
	}

	if e.turns.isLive(token) {
		e.emit(events.NewAssistantResponseFinal())
	}
	return nil
}

func formatMessageError(err error) string {
	var remoteErr *chat.RemoteError
	if errors.As(err, &remoteErr) {
		return "Error: " + remoteErr.Message
	}
	return fmt.Sprintf("Error: %v", err)
}
