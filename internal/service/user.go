package service

import (
	"poker_web/internal/models"
	"poker_web/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	profiles *UserCache
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		profiles: NewUserCache(DefaultProfileTTL, userRepo.FindByID),
	}
}

func (s *UserService) CreateUser(user *models.User) error {
	return s.userRepo.Create(user)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.FindByUsername(username)
}

// GetUserByID 經由 TTL 緩存讀取用戶資料
// 顯示名稱解析（會話初始化、聊天作者）走這條路徑，避免重複查詢
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.profiles.Get(id)
}

// InvalidateProfile 在用戶資料變更後使緩存失效
func (s *UserService) InvalidateProfile(id uint) {
	s.profiles.Invalidate(id)
}
