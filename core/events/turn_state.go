package events

const (
	// KindConversationStateChanged identifies a conversation state move.
	KindConversationStateChanged Kind = "turn_state.state_changed"
	// KindTurnStarted identifies a new turn token becoming current.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCancelled identifies the current turn being invalidated.
	KindTurnCancelled Kind = "turn_state.cancelled"
)

// ConversationStateChanged marks the engine moving between conversation
// states.
type ConversationStateChanged struct {
	Base
	From string
	To   string
}

// NewConversationStateChanged creates a state changed event.
func NewConversationStateChanged(from, to string) ConversationStateChanged {
	return ConversationStateChanged{Base: NewBase(KindConversationStateChanged), From: from, To: to}
}

// TurnStarted marks a new turn token becoming current.
type TurnStarted struct {
	Base
	Token string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(token string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), Token: token}
}

// TurnCancelled marks the current turn being invalidated before completion.
type TurnCancelled struct{ Base }

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled() TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled)}
}
