// Package capture defines the speech-capture capability contract.
//
// A capture client listens for a single utterance and reports exactly one of
// a final transcript, an error, or an end without a result. Continuous and
// interim transcription are intentionally not part of the contract.
package capture

// DefaultLanguage is used when no language option is provided.
const DefaultLanguage = "en-US"

type CaptureOptions struct {
	// Language is the BCP 47 language/locale tag the utterance is expected in.
	Language string
	// InterimResults requests partial transcripts before the utterance ends.
	// Capture clients used by the engine are expected to leave this off.
	InterimResults bool

	// TranscriptCallback is called with the final transcript of the captured
	// utterance. It fires at most once per Start.
	TranscriptCallback func(transcript string)
	// EndedCallback is called when capture ends without producing a
	// transcript. Mutually exclusive with TranscriptCallback.
	EndedCallback func()
	// ErrorCallback is called when the capture client fails.
	ErrorCallback func(err error)
}

type CaptureOption func(*CaptureOptions)

func WithLanguage(language string) CaptureOption {
	return func(o *CaptureOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithInterimResults(enabled bool) CaptureOption {
	return func(o *CaptureOptions) {
		o.InterimResults = enabled
	}
}

func WithTranscriptCallback(callback func(transcript string)) CaptureOption {
	return func(o *CaptureOptions) {
		o.TranscriptCallback = callback
	}
}

func WithEndedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) {
		o.EndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) CaptureOption {
	return func(o *CaptureOptions) {
		o.ErrorCallback = callback
	}
}
