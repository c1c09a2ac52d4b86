package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(conversation *model.Conversation) error
	FindByID(id uuid.UUID) (*model.Conversation, error)
	FindByUserID(userID uuid.UUID) ([]model.Conversation, error)
	Exists(id uuid.UUID) (bool, error)
	Delete(id uuid.UUID) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db}
}

func (r *conversationRepo) Create(conversation *model.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *conversationRepo) FindByID(id uuid.UUID) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.First(&conversation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepo) FindByUserID(userID uuid.UUID) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&conversations).Error
	return conversations, err
}

func (r *conversationRepo) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Conversation{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *conversationRepo) Delete(id uuid.UUID) error {
	return r.db.Select("Messages").Delete(&model.Conversation{BaseModel: model.BaseModel{ID: id}}).Error
}
