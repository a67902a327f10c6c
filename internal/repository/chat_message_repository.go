package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type ChatMessageRepository interface {
	Create(message *models.ChatMessage) error
	FindByID(id uint) (*models.ChatMessage, error)
	FindBySessionAndRound(sessionID uint, roundNumber int) ([]models.ChatMessage, error)
}

type chatMessageRepository struct {
	db *storage.PostgresDB
}

func NewChatMessageRepository(db *storage.PostgresDB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *chatMessageRepository) FindByID(id uint) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := r.db.Preload("Reactions").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindBySessionAndRound 只取該回合的消息，依創建時間升序
// 切換回合時載入的集合整批替換，不做跨回合合併
func (r *chatMessageRepository) FindBySessionAndRound(sessionID uint, roundNumber int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Preload("Reactions").
		Where("session_id = ? AND round_number = ?", sessionID, roundNumber).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}
