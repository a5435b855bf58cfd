package events

import (
	"strings"
	"time"
)

const (
	// SubjectPrefix is prepended to the event type to build the bus subject.
	SubjectPrefix = "events."

	ChatAnswered  = "CHAT_ANSWERED"
	ChatTruncated = "CHAT_TRUNCATED"
	ChatDeleted   = "CHAT_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// TypeFromSubject is the inverse of Subject.
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}
