package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type RoundRepository interface {
	Create(round *models.Round) error
	FindBySessionID(sessionID uint) ([]models.Round, error)
	FindBySessionAndNumber(sessionID uint, roundNumber int) (*models.Round, error)
	DeleteBySessionID(sessionID uint) error
}

type roundRepository struct {
	db *storage.PostgresDB
}

func NewRoundRepository(db *storage.PostgresDB) RoundRepository {
	return &roundRepository{db: db}
}

func (r *roundRepository) Create(round *models.Round) error {
	return r.db.Create(round).Error
}

// FindBySessionID 依回合編號升序查詢歷史快照
func (r *roundRepository) FindBySessionID(sessionID uint) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.Where("session_id = ?", sessionID).Order("round_number asc").Find(&rounds).Error
	return rounds, err
}

func (r *roundRepository) FindBySessionAndNumber(sessionID uint, roundNumber int) (*models.Round, error) {
	var round models.Round
	err := r.db.Where("session_id = ? AND round_number = ?", sessionID, roundNumber).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// DeleteBySessionID 刪除整個會話的歷史，供管理員「刪除所有回合」使用
func (r *roundRepository) DeleteBySessionID(sessionID uint) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&models.Round{}).Error
}
