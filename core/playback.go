package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/anavrin-labs/parley-core/core/events"
	"github.com/anavrin-labs/parley-core/core/playback"
)

// speechPlayback is the playback facade. It keeps at most one utterance
// audible at a time: a new Speak cancels whatever was playing, and Cancel is
// idempotent. Suppressing the side effects of late end/error callbacks after
// a cancel is the turn controller's token check, not this facade.
type speechPlayback struct {
	// client stores the configured playback implementation.
	client PlaybackClient

	speakOpts []playback.SpeakOption
	emitEvent eventEmitter

	mu     sync.Mutex
	active bool
}

func newSpeechPlayback(client PlaybackClient) *speechPlayback {
	return &speechPlayback{
		client:    client,
		emitEvent: noopEventEmitter,
	}
}

func (p *speechPlayback) set(client PlaybackClient) {
	if p != nil {
		p.client = client
	}
}

func (p *speechPlayback) setSpeakOptions(opts ...playback.SpeakOption) {
	if p != nil {
		p.speakOpts = opts
	}
}

func (p *speechPlayback) SetEventEmitter(emitEvent eventEmitter) {
	if p != nil {
		if emitEvent != nil {
			p.emitEvent = emitEvent
		} else {
			p.emitEvent = noopEventEmitter
		}
	}
}

// Speak voices text and calls onDone when the utterance ends, whether
// normally or through a playback failure. Failures follow the same path as
// completion so the conversation loop can move on without escalating.
// When no playback client is configured, onDone fires immediately.
func (p *speechPlayback) Speak(ctx context.Context, text string, onDone func()) {
	if !p.isConfigured() {
		p.emitEvent(events.NewAssistantPlaybackEnded(text))
		onDone()
		return
	}

	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		p.Cancel()
		p.mu.Lock()
	}
	p.active = true
	p.mu.Unlock()

	finish := func() {
		p.mu.Lock()
		p.active = false
		p.mu.Unlock()
		p.emitEvent(events.NewAssistantPlaybackEnded(text))
		onDone()
	}

	speakOptions := append([]playback.SpeakOption{
		playback.WithStartedCallback(func() {
			p.emitEvent(events.NewAssistantPlaybackStarted(text))
		}),
		playback.WithEndedCallback(finish),
		playback.WithErrorCallback(func(err error) {
			logger.WarnContext(ctx, fmt.Sprintf("playback failed: %v", err))
			finish()
		}),
	}, p.speakOpts...)

	if err := p.client.Speak(ctx, text, speakOptions...); err != nil {
		logger.WarnContext(ctx, fmt.Sprintf("failed to start playback: %v", err))
		finish()
	}
}

// Cancel immediately silences any active utterance. Safe to call repeatedly
// and when nothing is playing.
func (p *speechPlayback) Cancel() {
	if !p.isConfigured() {
		return
	}

	p.mu.Lock()
	p.active = false
	p.mu.Unlock()

	if err := p.client.Cancel(); err != nil {
		logger.Warn(fmt.Sprintf("failed to cancel playback: %v", err))
	}
}

func (p *speechPlayback) isConfigured() bool {
	return p != nil && p.client != nil
}
