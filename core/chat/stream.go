package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EventKind string

const (
	// EventContent carries a response text delta.
	EventContent EventKind = "content"
	// EventDone marks the terminal event of a successful stream.
	EventDone EventKind = "done"
	// EventError marks the terminal event of a stream the backend failed.
	EventError EventKind = "error"
)

// Event is a single decoded stream event. Content is set for EventContent,
// Message for EventError.
type Event struct {
	Kind    EventKind
	Content string
	Message string
}

type requestBody struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Stream is a prepared streamed chat request.
type Stream struct {
	client *Client

	message   string
	sessionID string
}

// Events performs the request and yields decoded events in arrival order.
// The sequence ends on a done payload, an error payload, transport
// end-of-stream, or a decode failure. Cancelling ctx aborts the underlying
// read and ends the sequence without yielding anything further.
func (s *Stream) Events(ctx context.Context) func(func(Event, error) bool) {
	requestToFirstEventTime := time.Time{}
	setRequestToFirstEventTime := func(span trace.Span) {
		if requestToFirstEventTime.IsZero() {
			return
		}
		span.SetAttributes(attribute.Float64("response.request_to_first_event_time", time.Since(requestToFirstEventTime).Seconds()))
		span.AddEvent("received first event")
		requestToFirstEventTime = time.Time{}
	}

	return func(yield func(Event, error) bool) {
		ctx, span := tracer.Start(ctx, "chat stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.session_id", s.sessionID))

		requestBodyBytes, err := json.Marshal(requestBody{Message: s.message, SessionID: s.sessionID})
		if err != nil {
			err = fmt.Errorf("error marshalling JSON: %w", err)
			span.RecordError(err)
			yield(Event{}, err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.baseURL+streamPath, bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			err = fmt.Errorf("error creating HTTP request: %w", err)
			span.RecordError(err)
			yield(Event{}, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		span.SetAttributes(attribute.String("request.url", req.URL.String()))
		httpClient := s.client.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
					return operationName + " " + request.URL.Path
				}),
			)}
		}

		requestToFirstEventTime = time.Now()
		span.AddEvent("request started")
		resp, err := httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				span.AddEvent("request cancelled")
				return
			}
			err = fmt.Errorf("error sending request: %w", &TransportError{Err: err})
			span.RecordError(err)
			yield(Event{}, err)
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode != http.StatusOK {
			if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
				span.SetAttributes(attribute.String("response.error", string(errorBody)))
			}

			err := &TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
			span.RecordError(err)
			yield(Event{}, err)
			return
		}

		decodeEvents(ctx, resp.Body, func(event Event, err error) bool {
			setRequestToFirstEventTime(span)
			if err != nil {
				span.RecordError(err)
			}
			return yield(event, err)
		})
	}
}
