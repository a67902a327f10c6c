package repository

import "poker_web/internal/storage"

type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	Round       RoundRepository
	ChatMessage ChatMessageRepository
	Reaction    ReactionRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Session:     NewSessionRepository(db),
		Round:       NewRoundRepository(db),
		ChatMessage: NewChatMessageRepository(db),
		Reaction:    NewReactionRepository(db),
	}
}
