// Package engine implements the conversational turn-taking engine.
//
// An Engine drives one conversation at a time, in either of two modes. Voice
// mode loops through capture, a streamed backend reply, and spoken delivery,
// resuming capture automatically while the live intent stays on continue.
// Text mode streams the backend reply delta-by-delta into an ordered message
// ledger. Both modes share a single live-intent cell and current-turn token;
// every capability callback consults the token before touching engine state,
// so results from a cancelled or superseded turn never corrupt the live
// conversation.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anavrin-labs/parley-core/core/chat"
	"github.com/anavrin-labs/parley-core/core/events"
)

const defaultSettleDelay = 350 * time.Millisecond

type Engine struct {
	closeOnce sync.Once

	mu    sync.Mutex
	state ConversationState
	// accumulator collects streamed reply text during a Thinking phase. It is
	// cleared when the phase starts and read once when it ends.
	accumulator strings.Builder
	// cancelStream aborts the in-flight network read, nil when none is open.
	// streamGen identifies which stream the handle belongs to, so a finished
	// stream never clears the handle of the one that superseded it.
	cancelStream context.CancelFunc
	streamGen    uint64
	emitEvent    eventEmitter
	baseContext  context.Context

	turns turnController

	session Session
	ledger  *ledger

	chatClient *chat.Client
	// capture is the capture facade used to normalize client wiring.
	capture *speechCapture
	// playback is the playback facade holding the single utterance handle.
	playback *speechPlayback

	settleDelay time.Duration
}

func New(opts ...EngineOption) *Engine {
	e := &Engine{
		state:       StateIdle,
		session:     newSession(),
		ledger:      newLedger(),
		chatClient:  chat.NewClient(),
		settleDelay: defaultSettleDelay,
		emitEvent:   noopEventEmitter,
		baseContext: context.Background(),
	}

	e.capture = newSpeechCapture(nil)
	e.playback = newSpeechPlayback(nil)
	e.capture.SetEventEmitter(e.emit)
	e.playback.SetEventEmitter(e.emit)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Session returns the session attached to every outgoing request.
func (e *Engine) Session() Session {
	return e.session
}

// State returns the current conversation state.
func (e *Engine) State() ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Messages returns a point-in-time copy of the message ledger.
func (e *Engine) Messages() []Message {
	return e.ledger.snapshot()
}

// Close stops the conversation and releases the engine.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.Stop()
	})
}

func (e *Engine) emit(event events.Event) {
	e.mu.Lock()
	emitEvent := e.emitEvent
	e.mu.Unlock()

	emitEvent(event)
}

// trackStream cancels any in-flight stream and registers cancel as the
// engine's single cancellation handle.
func (e *Engine) trackStream(cancel context.CancelFunc) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelStream != nil {
		e.cancelStream()
	}
	e.streamGen++
	e.cancelStream = cancel
	return e.streamGen
}

// releaseStream releases cancel and clears the cancellation handle, unless a
// newer stream has already replaced it.
func (e *Engine) releaseStream(gen uint64, cancel context.CancelFunc) {
	e.mu.Lock()
	if e.streamGen == gen {
		e.cancelStream = nil
	}
	e.mu.Unlock()

	cancel()
}

// transition moves the conversation state along the transition table,
// emitting a state change event. Requests not in the table are rejected.
func (e *Engine) transition(to ConversationState) error {
	e.mu.Lock()
	from := e.state
	if from == to {
		e.mu.Unlock()
		return nil
	}
	if !canTransition(from, to) {
		e.mu.Unlock()
		return &invalidTransitionError{from: from, to: to}
	}
	e.state = to
	e.mu.Unlock()

	e.emit(events.NewConversationStateChanged(string(from), string(to)))
	return nil
}
