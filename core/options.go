package engine

import (
	"context"
	"time"

	"github.com/anavrin-labs/parley-core/core/capture"
	"github.com/anavrin-labs/parley-core/core/chat"
	"github.com/anavrin-labs/parley-core/core/playback"
)

type EngineOption func(*Engine)

// CaptureClient is the speech-capture capability. Start begins a one-shot
// capture that reports exactly one of transcript, error, or
// ended-without-result through the provided options. Stop must be safe to
// call when capture is not running.
type CaptureClient interface {
	Start(ctx context.Context, opts ...capture.CaptureOption) error
	Stop() error
}

func WithCaptureClient(client CaptureClient) EngineOption {
	return func(e *Engine) {
		e.capture.set(client)
	}
}

func WithCaptureLanguage(language string) EngineOption {
	return func(e *Engine) {
		e.capture.setLanguage(language)
	}
}

// PlaybackClient is the speech-playback capability. Speak voices one
// utterance and reports its lifecycle through the provided options. Cancel
// must be idempotent and silence audio immediately.
type PlaybackClient interface {
	Speak(ctx context.Context, text string, opts ...playback.SpeakOption) error
	Cancel() error
}

func WithPlaybackClient(client PlaybackClient) EngineOption {
	return func(e *Engine) {
		e.playback.set(client)
	}
}

func WithSpeakOptions(opts ...playback.SpeakOption) EngineOption {
	return func(e *Engine) {
		e.playback.setSpeakOptions(opts...)
	}
}

func WithChatClient(client *chat.Client) EngineOption {
	return func(e *Engine) {
		if client != nil {
			e.chatClient = client
		}
	}
}

// WithSettleDelay overrides the pause between the end of spoken delivery and
// re-opening capture. The pause keeps the tail of the agent's own voice out
// of the next utterance.
func WithSettleDelay(delay time.Duration) EngineOption {
	return func(e *Engine) {
		if delay >= 0 {
			e.settleDelay = delay
		}
	}
}

type ConverseOptions struct {
	onTranscription func(transcript string)
	onResponse      func(response string)
	onResponseEnd   func()
	onSpeechStarted func(text string)
	onSpeechEnded   func(text string)
	onStateChanged  func(from ConversationState, to ConversationState)
	onCancellation  func()
}

type ConverseOption func(*ConverseOptions)

// WithTranscriptionCallback registers a callback for final transcripts
// produced by the configured capture client.
func WithTranscriptionCallback(callback func(transcript string)) ConverseOption {
	return func(o *ConverseOptions) {
		o.onTranscription = callback
	}
}

// WithResponseCallback registers a callback for streamed response text
// deltas, invoked in arrival order.
func WithResponseCallback(callback func(response string)) ConverseOption {
	return func(o *ConverseOptions) {
		o.onResponse = callback
	}
}

// WithResponseEndCallback registers a callback for response stream
// completion.
func WithResponseEndCallback(callback func()) ConverseOption {
	return func(o *ConverseOptions) {
		o.onResponseEnd = callback
	}
}

// WithSpeechStartedCallback registers a callback for the start of spoken
// delivery.
func WithSpeechStartedCallback(callback func(text string)) ConverseOption {
	return func(o *ConverseOptions) {
		o.onSpeechStarted = callback
	}
}

// WithSpeechEndedCallback registers a callback for the end of spoken
// delivery, whether it completed normally or failed.
func WithSpeechEndedCallback(callback func(text string)) ConverseOption {
	return func(o *ConverseOptions) {
		o.onSpeechEnded = callback
	}
}

// WithStateChangedCallback registers a callback for conversation state
// transitions.
func WithStateChangedCallback(callback func(from ConversationState, to ConversationState)) ConverseOption {
	return func(o *ConverseOptions) {
		o.onStateChanged = callback
	}
}

// WithCancellationCallback registers a callback for turn cancellation.
func WithCancellationCallback(callback func()) ConverseOption {
	return func(o *ConverseOptions) {
		o.onCancellation = callback
	}
}
