package engine

import (
	"context"

	"github.com/anavrin-labs/parley-core/core/events"
)

// Stop deterministically ends the conversation from any state: the current
// turn token is invalidated, any in-flight network read, playback, and
// capture are cancelled, the accumulator is cleared, and the live intent is
// set to stop. Late callbacks from the cancelled turn no-op on the token
// check.
func (e *Engine) Stop() {
	e.turns.setIntent(IntentStop)
	e.turns.invalidate()

	e.mu.Lock()
	cancel := e.cancelStream
	e.cancelStream = nil
	from := e.state
	e.state = StateIdle
	e.accumulator.Reset()
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.playback.Cancel()
	e.capture.Stop()

	if from != StateIdle {
		e.emit(events.NewTurnCancelled())
		e.emit(events.NewConversationStateChanged(string(from), string(StateIdle)))
	}
}

// Reset clears the message ledger and cancels any pending text-mode stream
// without touching it further. The pending assistant placeholder, if any, is
// discarded along with the rest of the history. A running voice conversation
// is left alone; text-mode streams only ever run while the state is idle, so
// that is the only state in which there is a turn for Reset to cancel.
func (e *Engine) Reset() {
	e.mu.Lock()
	idle := e.state == StateIdle
	var cancel context.CancelFunc
	if idle {
		cancel = e.cancelStream
		e.cancelStream = nil
	}
	e.mu.Unlock()

	if idle {
		e.turns.invalidate()
		if cancel != nil {
			cancel()
		}
	}
	e.ledger.clear()
}
