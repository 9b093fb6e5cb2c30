package chat

const (
	EventConversationCreated = "conversationCreated"
	EventDone                = "done"
	EventError               = "error"
)

// EventWriter receives relay events in order. *sse.Writer satisfies it.
type EventWriter interface {
	Send(v interface{}) error
}

type heartbeatWriter interface {
	Comment(text string) error
}

type ConversationCreatedEvent struct {
	Event          string `json:"event"`
	ConversationID uint   `json:"conversationId"`
	Title          string `json:"title"`
}

type TextChunkEvent struct {
	TextChunk string `json:"textChunk"`
}

// DoneEvent is terminal. MessageID is null when the model produced no text.
type DoneEvent struct {
	Event          string `json:"event"`
	MessageID      *uint  `json:"messageId"`
	ConversationID uint   `json:"conversationId"`
}

// ErrorEvent is terminal.
type ErrorEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func conversationCreated(id uint, title string) ConversationCreatedEvent {
	return ConversationCreatedEvent{Event: EventConversationCreated, ConversationID: id, Title: title}
}

func done(messageID *uint, conversationID uint) DoneEvent {
	return DoneEvent{Event: EventDone, MessageID: messageID, ConversationID: conversationID}
}

func errorEvent(message, details string) ErrorEvent {
	return ErrorEvent{Event: EventError, Message: message, Details: details}
}
