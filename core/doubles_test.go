package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anavrin-labs/parley-core/core/capture"
	"github.com/anavrin-labs/parley-core/core/playback"
)

// scriptedCaptureClient records Start/Stop calls and lets tests drive the
// capture callbacks by hand.
type scriptedCaptureClient struct {
	mu    sync.Mutex
	stats struct {
		starts int
		stops  int
	}
	options capture.CaptureOptions

	started chan struct{}
}

func newScriptedCaptureClient() *scriptedCaptureClient {
	return &scriptedCaptureClient{started: make(chan struct{}, 8)}
}

func (c *scriptedCaptureClient) Start(ctx context.Context, opts ...capture.CaptureOption) error {
	options := capture.CaptureOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	c.mu.Lock()
	c.stats.starts++
	c.options = options
	c.mu.Unlock()

	select {
	case c.started <- struct{}{}:
	default:
	}
	return nil
}

func (c *scriptedCaptureClient) Stop() error {
	c.mu.Lock()
	c.stats.stops++
	c.mu.Unlock()
	return nil
}

func (c *scriptedCaptureClient) starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.starts
}

func (c *scriptedCaptureClient) stops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.stops
}

func (c *scriptedCaptureClient) emitTranscript(transcript string) {
	c.mu.Lock()
	callback := c.options.TranscriptCallback
	c.mu.Unlock()
	if callback != nil {
		callback(transcript)
	}
}

func (c *scriptedCaptureClient) emitEnded() {
	c.mu.Lock()
	callback := c.options.EndedCallback
	c.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (c *scriptedCaptureClient) emitError(err error) {
	c.mu.Lock()
	callback := c.options.ErrorCallback
	c.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}

// scriptedPlaybackClient records utterances and lets tests complete or fail
// them by hand.
type scriptedPlaybackClient struct {
	mu         sync.Mutex
	utterances []string
	cancels    int
	options    playback.SpeakOptions

	spoken chan string
}

func newScriptedPlaybackClient() *scriptedPlaybackClient {
	return &scriptedPlaybackClient{spoken: make(chan string, 8)}
}

func (p *scriptedPlaybackClient) Speak(ctx context.Context, text string, opts ...playback.SpeakOption) error {
	options := playback.DefaultSpeakOptions()
	for _, opt := range opts {
		opt(&options)
	}

	p.mu.Lock()
	p.utterances = append(p.utterances, text)
	p.options = options
	p.mu.Unlock()

	if options.StartedCallback != nil {
		options.StartedCallback()
	}

	select {
	case p.spoken <- text:
	default:
	}
	return nil
}

func (p *scriptedPlaybackClient) Cancel() error {
	p.mu.Lock()
	p.cancels++
	p.mu.Unlock()
	return nil
}

func (p *scriptedPlaybackClient) spokenTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.utterances...)
}

func (p *scriptedPlaybackClient) cancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancels
}

func (p *scriptedPlaybackClient) finish() {
	p.mu.Lock()
	callback := p.options.EndedCallback
	p.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (p *scriptedPlaybackClient) fail(err error) {
	p.mu.Lock()
	callback := p.options.ErrorCallback
	p.mu.Unlock()
	if callback != nil {
		callback(err)
	}
}

func newScriptedChatServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
			flusher.Flush()
		}
	}))
}

func waitForState(t *testing.T, e *Engine, expected ConversationState) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.State() == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %q, still %q", expected, e.State())
}

func waitForSignal(t *testing.T, signal <-chan struct{}, description string) {
	t.Helper()

	select {
	case <-signal:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", description)
	}
}

func waitForSpoken(t *testing.T, playbackClient *scriptedPlaybackClient) string {
	t.Helper()

	select {
	case text := <-playbackClient.spoken:
		return text
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for playback")
		return ""
	}
}
