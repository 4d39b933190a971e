package engine

import (
	"context"
	"fmt"

	"github.com/anavrin-labs/parley-core/core/capture"
	"github.com/anavrin-labs/parley-core/core/events"
)

// speechCapture is the capture facade used to normalize client wiring. It is
// nil-safe when no client is configured and translates capability callbacks
// into typed events.
type speechCapture struct {
	// client stores the configured capture implementation.
	client CaptureClient

	language  string
	emitEvent eventEmitter
}

func newSpeechCapture(client CaptureClient) *speechCapture {
	return &speechCapture{
		client:    client,
		language:  capture.DefaultLanguage,
		emitEvent: noopEventEmitter,
	}
}

func (s *speechCapture) set(client CaptureClient) {
	if s != nil {
		s.client = client
	}
}

func (s *speechCapture) setLanguage(language string) {
	if s != nil && language != "" {
		s.language = language
	}
}

func (s *speechCapture) SetEventEmitter(emitEvent eventEmitter) {
	if s != nil {
		if emitEvent != nil {
			s.emitEvent = emitEvent
		} else {
			s.emitEvent = noopEventEmitter
		}
	}
}

// Start begins a one-shot capture. Exactly one of onTranscript and onNoResult
// fires; capture failures are reported as an ended-without-result, since the
// absence of an utterance is common and expected.
func (s *speechCapture) Start(ctx context.Context, onTranscript func(transcript string), onNoResult func()) error {
	if !s.isConfigured() {
		return fmt.Errorf("no capture client configured")
	}

	captureOptions := []capture.CaptureOption{
		capture.WithLanguage(s.language),
		capture.WithInterimResults(false),
		capture.WithTranscriptCallback(func(transcript string) {
			s.emitEvent(events.NewUserTranscriptFinal(transcript))
			onTranscript(transcript)
		}),
		capture.WithEndedCallback(func() {
			s.emitEvent(events.NewUserCaptureEnded())
			onNoResult()
		}),
		capture.WithErrorCallback(func(err error) {
			logger.WarnContext(ctx, fmt.Sprintf("capture failed: %v", err))
			s.emitEvent(events.NewUserCaptureEnded())
			onNoResult()
		}),
	}

	if err := s.client.Start(ctx, captureOptions...); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	s.emitEvent(events.NewUserCaptureStarted())
	return nil
}

// Stop stops any running capture. Safe to call when capture is not running.
func (s *speechCapture) Stop() {
	if !s.isConfigured() {
		return
	}

	if err := s.client.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("failed to stop capture: %v", err))
	}
}

func (s *speechCapture) isConfigured() bool {
	return s != nil && s.client != nil
}
