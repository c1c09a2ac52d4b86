package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *model.Message) error
	FindByConversationID(conversationID uuid.UUID) ([]model.Message, error)
	// LastMessages returns the most recent n messages in chronological order.
	LastMessages(conversationID uuid.UUID, n int) ([]model.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db}
}

func (r *messageRepo) Create(message *model.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepo) FindByConversationID(conversationID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&messages).Error
	return messages, err
}

func (r *messageRepo) LastMessages(conversationID uuid.UUID, n int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(n).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order for the model context window.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
