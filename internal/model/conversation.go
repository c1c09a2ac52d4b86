package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRole string

const (
	RoleMessageUser      MessageRole = "user"
	RoleMessageAssistant MessageRole = "assistant"
	RoleMessageSystem    MessageRole = "system"
)

// Conversation groups assistant messages for one user.
type Conversation struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string    `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message is one turn in a conversation. Metadata carries assistant
// execution details (action performed, success, execution time).
type Message struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ConversationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role           MessageRole     `gorm:"type:varchar(10);not null" json:"role" validate:"required,oneof=user assistant system"`
	Content        string          `gorm:"type:text;not null" json:"content"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
