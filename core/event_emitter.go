package engine

import "github.com/anavrin-labs/parley-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts ConverseOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.AssistantResponseSegment:
			if opts.onResponse != nil {
				opts.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if opts.onResponseEnd != nil {
				opts.onResponseEnd()
			}
		case events.AssistantPlaybackStarted:
			if opts.onSpeechStarted != nil {
				opts.onSpeechStarted(typedEvent.Text)
			}
		case events.AssistantPlaybackEnded:
			if opts.onSpeechEnded != nil {
				opts.onSpeechEnded(typedEvent.Text)
			}
		case events.ConversationStateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(ConversationState(typedEvent.From), ConversationState(typedEvent.To))
			}
		case events.TurnCancelled:
			if opts.onCancellation != nil {
				opts.onCancellation()
			}
		}
	}
}
