// File: internal/domain/conversation.go
package domain

import "time"

const DefaultConversationTitle = "New Conversation"

// Conversation is a titled thread of messages owned by one user.
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Title     string    `gorm:"size:255;not null;default:'New Conversation'" json:"title"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}
