package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeStreaming  ErrorType = "STREAMING"
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID uint
	UserID         uint
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(userID, conversationID uint) *ChatError {
	return &ChatError{
		Type:           ErrTypeNotFound,
		Operation:      "authorization",
		Message:        "Conversation not found.",
		UserID:         userID,
		ConversationID: conversationID,
	}
}

func NewStorageError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}

func NewStreamingError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStreaming, Operation: operation, Message: msg, Cause: cause}
}

// IsType reports whether err is a ChatError of type t.
func IsType(err error, t ErrorType) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == t
}
