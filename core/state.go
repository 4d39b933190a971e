package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ConversationState is the single explicit conversation state of an engine.
type ConversationState string

const (
	StateIdle      ConversationState = "idle"
	StateListening ConversationState = "listening"
	StateThinking  ConversationState = "thinking"
	StateSpeaking  ConversationState = "speaking"
)

// validTransitions is the conversation transition table. A requested
// transition absent from the table is rejected, never silently applied.
var validTransitions = map[ConversationState][]ConversationState{
	StateIdle:      {StateListening},
	StateListening: {StateThinking, StateIdle},
	StateThinking:  {StateSpeaking, StateIdle},
	StateSpeaking:  {StateListening, StateIdle},
}

func canTransition(from, to ConversationState) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Intent records whether the conversation should keep going. It is consulted
// at the moment a suspended operation resumes, never captured when the
// operation was scheduled.
type Intent string

const (
	IntentContinue Intent = "continue"
	IntentStop     Intent = "stop"
)

// turnController is the live-intent cell paired with the current-request
// token. At most one token is current at any time; allocating a new one
// invalidates the previous one for all purposes. Every capture, playback,
// and stream callback consults the controller before mutating engine state,
// which is what keeps late callbacks from a superseded turn inert.
type turnController struct {
	mu     sync.Mutex
	token  string
	intent Intent
}

// begin allocates a fresh token and makes it current.
func (c *turnController) begin() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = uuid.NewString()
	return c.token
}

// invalidate clears the current token so every outstanding callback becomes
// stale.
func (c *turnController) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
}

func (c *turnController) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token
}

// isLive reports whether token still identifies the current turn.
func (c *turnController) isLive(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return token != "" && token == c.token
}

func (c *turnController) setIntent(intent Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.intent = intent
}

func (c *turnController) currentIntent() Intent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.intent == "" {
		return IntentStop
	}
	return c.intent
}

type invalidTransitionError struct {
	from ConversationState
	to   ConversationState
}

func (e *invalidTransitionError) Error() string {
	return fmt.Sprintf("invalid conversation state transition: %s -> %s", e.from, e.to)
}
