package repository

import (
	"poker_web/internal/models"
	"poker_web/internal/storage"
)

type SessionRepository interface {
	Create(session *models.Session) error
	FindByRoomKey(roomKey string) (*models.Session, error)
	Update(session *models.Session) error
	Delete(id uint) error
}

type sessionRepository struct {
	db *storage.PostgresDB
}

func NewSessionRepository(db *storage.PostgresDB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByRoomKey(roomKey string) (*models.Session, error) {
	var session models.Session
	err := r.db.Where("room_key = ?", roomKey).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update 整行保存，併發寫入者以最後寫入為準（行級 last-write-wins）
func (r *sessionRepository) Update(session *models.Session) error {
	return r.db.Save(session).Error
}

func (r *sessionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Session{}, id).Error
}
