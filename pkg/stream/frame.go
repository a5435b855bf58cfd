package stream

import (
	"encoding/json"

	"ai-search-be/pkg/answer"
)

// Wire types, one JSON object per line.
const (
	FrameMessage    = "message"
	FrameSources    = "sources"
	FrameMessageEnd = "messageEnd"
	FrameError      = "error"
)

type Frame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	MessageID string      `json:"messageId,omitempty"`
}

// frameFor maps an answer event to its wire frame. Error frames carry no
// message id.
func frameFor(ev answer.Event, messageID string) Frame {
	switch ev.Type {
	case answer.EventToken:
		return Frame{Type: FrameMessage, Data: ev.Text, MessageID: messageID}
	case answer.EventSources:
		return Frame{Type: FrameSources, Data: ev.Sources, MessageID: messageID}
	case answer.EventEnd:
		return Frame{Type: FrameMessageEnd, MessageID: messageID}
	default:
		msg := ev.Message
		if msg == "" {
			msg = "Error with no details"
		}
		return Frame{Type: FrameError, Data: msg}
	}
}

// Encode renders a frame as a newline-terminated JSON line.
func Encode(f Frame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
