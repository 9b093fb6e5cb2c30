// Package client consumes the chat event stream: it decodes relay events,
// batches text fragments per frame and drives a terminal or test renderer.
package client

import "encoding/json"

type EventKind int

const (
	KindUnknown EventKind = iota
	KindConversationCreated
	KindTextChunk
	KindDone
	KindError
)

func (k EventKind) String() string {
	switch k {
	case KindConversationCreated:
		return "conversationCreated"
	case KindTextChunk:
		return "textChunk"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no event follows this one.
func (k EventKind) Terminal() bool {
	return k == KindDone || k == KindError
}

// Event is a decoded relay event. Only the fields of its Kind are set.
type Event struct {
	Kind           EventKind
	ConversationID uint
	Title          string
	TextChunk      string
	MessageID      *uint
	Message        string
	Details        string
}

type wireEvent struct {
	Event          string  `json:"event"`
	TextChunk      *string `json:"textChunk"`
	ConversationID uint    `json:"conversationId"`
	Title          string  `json:"title"`
	MessageID      *uint   `json:"messageId"`
	Message        string  `json:"message"`
	Details        string  `json:"details"`
}

// Decode parses one data payload. ok is false for payloads that are not JSON
// objects or match no known event; callers skip those.
func Decode(data []byte) (ev Event, ok bool) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, false
	}

	switch w.Event {
	case "conversationCreated":
		return Event{Kind: KindConversationCreated, ConversationID: w.ConversationID, Title: w.Title}, true
	case "done":
		return Event{Kind: KindDone, ConversationID: w.ConversationID, MessageID: w.MessageID}, true
	case "error":
		return Event{Kind: KindError, Message: w.Message, Details: w.Details}, true
	case "":
		if w.TextChunk != nil {
			return Event{Kind: KindTextChunk, TextChunk: *w.TextChunk}, true
		}
	}
	return Event{}, false
}
