package engine

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one engine lifetime towards the backend. It is created
// once, never mutated, and attached to every outgoing request.
type Session struct {
	ID        string
	CreatedAt time.Time
}

func newSession() Session {
	return Session{ID: uuid.NewString(), CreatedAt: time.Now()}
}
