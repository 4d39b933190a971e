package chat

import "fmt"

// TransportError reports a failed request or a transport-level abort that was
// not an intentional cancellation. It covers non-success HTTP statuses and
// broken reads.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("non-OK HTTP status: %s", e.Status)
	}
	return fmt.Sprintf("transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a structurally malformed event payload. It is fatal for
// the stream it occurred on and is never retried.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed event payload %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RemoteError reports an error the backend put on the stream itself, through
// an event payload carrying an error field.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "remote error: " + e.Message
}
