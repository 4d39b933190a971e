// Package chat implements the streaming chat client and decoder.
//
// A Stream yields decoded events in strict arrival order. Stream consumers
// cancel through the context passed to Events; cancellation is a silent
// termination, not a reportable failure.
package chat

import (
	"net/http"
	"strings"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

const streamPath = "/chat/stream"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithBaseURL overrides the backend base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client used for streaming requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenStream prepares a streamed chat request. No network activity happens
// until the returned stream's Events iterator is consumed.
func (c *Client) OpenStream(message string, sessionID string) *Stream {
	return &Stream{
		client:    c,
		message:   message,
		sessionID: sessionID,
	}
}
