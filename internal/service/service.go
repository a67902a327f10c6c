package service

import (
	"poker_web/internal/repository"
)

type Services struct {
	User     *UserService
	Session  *SessionService
	Chat     *ChatService
	Realtime *RealtimeManager
}

func NewServices(repos *repository.Repositories) *Services {
	realtime := NewRealtimeManager()

	return &Services{
		User:     NewUserService(repos.User),
		Session:  NewSessionService(repos.Session, repos.Round, realtime),
		Chat:     NewChatService(repos.ChatMessage, repos.Reaction, repos.Session, realtime),
		Realtime: realtime,
	}
}
