package events

const (
	// KindAssistantPlaybackStarted identifies the start of spoken delivery.
	KindAssistantPlaybackStarted Kind = "assistant_playback.started"
	// KindAssistantPlaybackEnded identifies the end of spoken delivery.
	KindAssistantPlaybackEnded Kind = "assistant_playback.ended"
)

// AssistantPlaybackStarted marks the start of spoken delivery and carries the
// full text being spoken.
type AssistantPlaybackStarted struct {
	Base
	Text string
}

// NewAssistantPlaybackStarted creates a playback started event.
func NewAssistantPlaybackStarted(text string) AssistantPlaybackStarted {
	return AssistantPlaybackStarted{Base: NewBase(KindAssistantPlaybackStarted), Text: text}
}

// AssistantPlaybackEnded marks the end of spoken delivery, whether it
// completed normally or failed.
type AssistantPlaybackEnded struct {
	Base
	Text string
}

// NewAssistantPlaybackEnded creates a playback ended event.
func NewAssistantPlaybackEnded(text string) AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded), Text: text}
}
