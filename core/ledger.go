package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	ErrMessageNotFound = errors.New("ledger update failed: message not found")
	ErrMessageNotOpen  = errors.New("ledger update failed: message is not open for streaming")
	ErrMessageNotTail  = errors.New("ledger update failed: message is not the tail assistant message")
)

// Role describes who a ledger message is from.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single exchanged message. Messages are owned exclusively by
// the ledger; content is mutable only while the message is the tail
// assistant message with an open stream.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// ledger is the ordered, append-only message record used by the text-mode
// conversation flow. Exactly one assistant message at a time may be open for
// streaming, always the tail.
type ledger struct {
	mu sync.RWMutex

	messages []Message
	// openID is the ID of the tail assistant message currently receiving
	// streamed deltas, empty when no stream is open.
	openID string
}

func newLedger() *ledger {
	return &ledger{}
}

func (l *ledger) append(role Role, content string) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	l.messages = append(l.messages, message)
	return message
}

// openAssistantMessage appends an empty assistant placeholder and marks it as
// the streaming target.
func (l *ledger) openAssistantMessage() Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
	l.messages = append(l.messages, message)
	l.openID = message.ID
	return message
}

// appendContent appends a streamed delta to the open assistant message.
// Deltas are addressed by message ID, not by position, so ledger mutations
// elsewhere can never target the wrong message.
func (l *ledger) appendContent(id string, delta string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.openID != id {
		return ErrMessageNotOpen
	}

	index, err := l.indexOf(id)
	if err != nil {
		return err
	}
	if index != len(l.messages)-1 {
		return ErrMessageNotTail
	}

	l.messages[index].Content += delta
	return nil
}

// replaceContent overwrites the open assistant message's content, used when
// a stream fails and the placeholder must carry the error text instead.
func (l *ledger) replaceContent(id string, content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.openID != id {
		return ErrMessageNotOpen
	}

	index, err := l.indexOf(id)
	if err != nil {
		return err
	}

	l.messages[index].Content = content
	return nil
}

// closeStream seals the open assistant message; its content is immutable
// afterwards.
func (l *ledger) closeStream(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.openID == id {
		l.openID = ""
	}
}

func (l *ledger) snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var messages []Message
	if err := copier.Copy(&messages, &l.messages); err != nil {
		// copier only fails on incompatible shapes, which identical slice
		// types cannot produce.
		logger.Error(fmt.Sprintf("failed to copy ledger messages: %v", err))
		return nil
	}
	return messages
}

func (l *ledger) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = nil
	l.openID = ""
}

func (l *ledger) indexOf(id string) (int, error) {
	for i := range l.messages {
		if l.messages[i].ID == id {
			return i, nil
		}
	}
	return 0, ErrMessageNotFound
}
