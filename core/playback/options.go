// Package playback defines the speech-playback capability contract.
//
// A playback client speaks one utterance at a time and reports its lifecycle
// through started/ended/error callbacks. Cancellation must be idempotent and
// must silence audio immediately; suppressing the side effects of a pending
// ended/error callback is the caller's responsibility.
package playback

const (
	DefaultRate   = 1.0
	DefaultPitch  = 1.0
	DefaultVolume = 1.0
)

type SpeakOptions struct {
	// Rate is the speaking rate multiplier.
	Rate float64
	// Pitch is the voice pitch multiplier.
	Pitch float64
	// Volume is the playback volume in the range (0, 1].
	Volume float64

	// StartedCallback is called when audio output begins.
	StartedCallback func()
	// EndedCallback is called when the utterance finishes playing. It is not
	// called after a cancel.
	EndedCallback func()
	// ErrorCallback is called when the playback client fails mid-utterance.
	ErrorCallback func(err error)
}

type SpeakOption func(*SpeakOptions)

func DefaultSpeakOptions() SpeakOptions {
	return SpeakOptions{Rate: DefaultRate, Pitch: DefaultPitch, Volume: DefaultVolume}
}

func WithRate(rate float64) SpeakOption {
	return func(o *SpeakOptions) {
		if rate > 0 {
			o.Rate = rate
		}
	}
}

func WithPitch(pitch float64) SpeakOption {
	return func(o *SpeakOptions) {
		if pitch > 0 {
			o.Pitch = pitch
		}
	}
}

func WithVolume(volume float64) SpeakOption {
	return func(o *SpeakOptions) {
		if volume > 0 && volume <= 1 {
			o.Volume = volume
		}
	}
}

func WithStartedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) {
		o.StartedCallback = callback
	}
}

func WithEndedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) {
		o.EndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) SpeakOption {
	return func(o *SpeakOptions) {
		o.ErrorCallback = callback
	}
}
