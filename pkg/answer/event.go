package answer

import "ai-search-be/pkg/search"

type EventType string

const (
	EventToken   EventType = "token"
	EventSources EventType = "sources"
	EventEnd     EventType = "end"
	EventError   EventType = "error"
)

// Event is one step of an answer run. Exactly one of the payload fields is
// meaningful, depending on Type.
type Event struct {
	Type    EventType
	Text    string          // EventToken
	Sources []search.Result // EventSources
	Message string          // EventError
}

func TokenEvent(text string) Event { return Event{Type: EventToken, Text: text} }

func SourcesEvent(sources []search.Result) Event {
	return Event{Type: EventSources, Sources: sources}
}

func EndEvent() Event { return Event{Type: EventEnd} }

func ErrorEvent(message string) Event { return Event{Type: EventError, Message: message} }

// Terminal reports whether nothing may follow the event.
func (e Event) Terminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}
