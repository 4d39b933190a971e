package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anavrin-labs/parley-core/core/chat"
	"github.com/anavrin-labs/parley-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Converse starts the voice conversation loop: capture an utterance, stream
// the backend reply, speak it, then listen again. The loop keeps going until
// Stop is called or a capture attempt ends without a result. Converse returns
// once the first capture has started; progress is reported through the
// callback options.
func (e *Engine) Converse(ctx context.Context, opts ...ConverseOption) error {
	options := ConverseOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return fmt.Errorf("conversation already active in state %q", e.state)
	}
	e.emitEvent = newCallbackEventEmitter(options)
	e.baseContext = ctx
	e.mu.Unlock()

	if !e.capture.isConfigured() {
		return fmt.Errorf("no capture client configured")
	}

	e.turns.setIntent(IntentContinue)
	return e.startListening(ctx)
}

// startListening begins a new turn: a fresh token is allocated, which
// invalidates every callback still outstanding from the previous one.
func (e *Engine) startListening(ctx context.Context) error {
	token := e.turns.begin()
	e.emit(events.NewTurnStarted(token))

	if err := e.transition(StateListening); err != nil {
		return err
	}

	err := e.capture.Start(ctx,
		func(transcript string) {
			if !e.turns.isLive(token) {
				return
			}
			e.handleTranscript(token, transcript)
		},
		func() {
			if !e.turns.isLive(token) {
				return
			}
			if err := e.transition(StateIdle); err != nil {
				logger.WarnContext(ctx, fmt.Sprintf("failed to return to idle: %v", err))
			}
		},
	)
	if err != nil {
		if transitionErr := e.transition(StateIdle); transitionErr != nil {
			logger.WarnContext(ctx, fmt.Sprintf("failed to return to idle: %v", transitionErr))
		}
		return err
	}

	return nil
}

func (e *Engine) handleTranscript(token string, transcript string) {
	if err := e.transition(StateThinking); err != nil {
		logger.Warn(fmt.Sprintf("dropping transcript: %v", err))
		return
	}

	e.mu.Lock()
	e.accumulator.Reset()
	streamCtx, cancel := context.WithCancel(e.baseContext)
	e.mu.Unlock()
	gen := e.trackStream(cancel)

	go e.consumeStream(streamCtx, token, transcript, gen, cancel)
}

// consumeStream reduces the reply stream into the accumulator, then decides
// the next phase. Decoder errors are spoken rather than silently dropped;
// cancellation produces neither speech nor a visible message.
func (e *Engine) consumeStream(ctx context.Context, token string, transcript string, gen uint64, cancel context.CancelFunc) {
	defer e.releaseStream(gen, cancel)

	ctx, span := tracer.Start(ctx, "converse turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("turn.token", token),
		attribute.String("request.session_id", e.session.ID),
	)

	stream := e.chatClient.OpenStream(transcript, e.session.ID)

	var failure string
	for event, err := range stream.Events(ctx) {
		if !e.turns.isLive(token) {
			return
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			failure = spokenErrorMessage(err)
			break
		}

		switch event.Kind {
		case chat.EventContent:
			e.mu.Lock()
			e.accumulator.WriteString(event.Content)
			e.mu.Unlock()
			e.emit(events.NewAssistantResponseSegment(event.Content))
		case chat.EventDone:
			span.AddEvent("stream done")
		case chat.EventError:
			span.AddEvent("stream error", trace.WithAttributes(attribute.String("error", event.Message)))
			failure = spokenErrorMessage(&chat.RemoteError{Message: event.Message})
		}
	}

	if !e.turns.isLive(token) {
		return
	}

	// A cancelled stream ends the sequence silently; the accumulated partial
	// reply must never be spoken.
	if ctx.Err() != nil {
		span.AddEvent("stream cancelled")
		if err := e.transition(StateIdle); err != nil {
			logger.Warn(fmt.Sprintf("failed to return to idle: %v", err))
		}
		return
	}

	e.emit(events.NewAssistantResponseFinal())

	e.mu.Lock()
	text := e.accumulator.String()
	e.mu.Unlock()

	if failure != "" {
		e.speak(token, failure)
		return
	}

	if text == "" {
		if err := e.transition(StateIdle); err != nil {
			logger.WarnContext(ctx, fmt.Sprintf("failed to return to idle: %v", err))
		}
		return
	}

	e.speak(token, text)
}

func (e *Engine) speak(token string, text string) {
	if err := e.transition(StateSpeaking); err != nil {
		logger.Warn(fmt.Sprintf("dropping utterance: %v", err))
		return
	}

	e.mu.Lock()
	ctx := e.baseContext
	e.mu.Unlock()

	e.playback.Speak(ctx, text, func() {
		if !e.turns.isLive(token) {
			return
		}
		e.handleSpeechEnd(ctx, token)
	})
}

// handleSpeechEnd resumes the loop after spoken delivery. The live intent is
// read here, at resumption time: playback's end callback fires asynchronously
// and a Stop may already have been requested since the utterance started.
func (e *Engine) handleSpeechEnd(ctx context.Context, token string) {
	if e.turns.currentIntent() != IntentContinue {
		if err := e.transition(StateIdle); err != nil {
			logger.WarnContext(ctx, fmt.Sprintf("failed to return to idle: %v", err))
		}
		return
	}

	// Settle before reopening capture so the tail of the agent's own voice
	// is not transcribed.
	time.AfterFunc(e.settleDelay, func() {
		if !e.turns.isLive(token) {
			return
		}
		if e.turns.currentIntent() != IntentContinue {
			if err := e.transition(StateIdle); err != nil {
				logger.WarnContext(ctx, fmt.Sprintf("failed to return to idle: %v", err))
			}
			return
		}

		if err := e.startListening(ctx); err != nil {
			logger.WarnContext(ctx, fmt.Sprintf("failed to resume listening: %v", err))
		}
	})
}

func spokenErrorMessage(err error) string {
	var remoteErr *chat.RemoteError
	if errors.As(err, &remoteErr) {
		return "Sorry, something went wrong: " + remoteErr.Message
	}
	return fmt.Sprintf("Sorry, something went wrong: %v", err)
}
