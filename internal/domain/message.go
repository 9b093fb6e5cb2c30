// File: internal/domain/message.go
package domain

import (
	"errors"
	"strings"
	"time"
)

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

var (
	ErrInvalidRole  = errors.New("message role must be 'user' or 'model'")
	ErrEmptyContent = errors.New("message content cannot be empty")
)

// Message is a single immutable turn within a conversation.
type Message struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	ConversationID uint        `gorm:"not null;index" json:"conversationId"`
	Role           MessageRole `gorm:"size:10;not null" json:"role"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (m *Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleModel {
		return ErrInvalidRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
