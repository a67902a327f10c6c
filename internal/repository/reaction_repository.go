package repository

import (
	"gorm.io/gorm/clause"

	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type ReactionRepository interface {
	Upsert(reaction *models.Reaction) error
	Delete(messageID uint, userID string) error
	FindByMessageID(messageID uint) ([]models.Reaction, error)
}

type reactionRepository struct {
	db *storage.PostgresDB
}

func NewReactionRepository(db *storage.PostgresDB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert 以 (message_id, user_id) 為鍵插入或覆蓋表情
// 每位用戶對每條消息同時只能持有一個表情，更換表情直接改寫
// emoji 欄位，不做先刪後插
func (r *reactionRepository) Upsert(reaction *models.Reaction) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"emoji", "user_name", "updated_at"}),
	}).Create(reaction).Error
}

func (r *reactionRepository) Delete(messageID uint, userID string) error {
	return r.db.Where("message_id = ? AND user_id = ?", messageID, userID).
		Delete(&models.Reaction{}).Error
}

func (r *reactionRepository) FindByMessageID(messageID uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.Where("message_id = ?", messageID).Find(&reactions).Error
	return reactions, err
}
