package events

const (
	// KindUserCaptureStarted identifies the start of speech capture.
	KindUserCaptureStarted Kind = "user_input.capture_started"
	// KindUserCaptureEnded identifies capture ending without a transcript.
	KindUserCaptureEnded Kind = "user_input.capture_ended"
	// KindUserTranscriptFinal identifies the terminal utterance transcript.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
)

// UserCaptureStarted marks the start of speech capture.
type UserCaptureStarted struct{ Base }

// NewUserCaptureStarted creates a capture started event.
func NewUserCaptureStarted() UserCaptureStarted {
	return UserCaptureStarted{Base: NewBase(KindUserCaptureStarted)}
}

// UserCaptureEnded marks capture ending without producing a transcript.
type UserCaptureEnded struct{ Base }

// NewUserCaptureEnded creates a capture ended event.
func NewUserCaptureEnded() UserCaptureEnded {
	return UserCaptureEnded{Base: NewBase(KindUserCaptureEnded)}
}

// UserTranscriptFinal carries the terminal transcript for an utterance.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}
