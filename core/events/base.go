package events

import "time"

// Kind discriminates event types on the wire and in callback dispatch.
type Kind string

// Event is implemented by every event in this package through an embedded
// Base.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and creation time shared by all events. Embed it and
// construct it with NewBase.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp reports when the event was created, not when it was delivered.
func (b Base) Timestamp() time.Time {
	return b.timestamp
}
