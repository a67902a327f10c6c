package service

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"poker_web/internal/models"
)

// 測試用的記憶體版 repository，模擬資料庫行為：
// 讀取回傳獨立副本，寫入整行覆蓋

type fakeSessionRepo struct {
	mu             sync.Mutex
	sessions       map[string]*models.Session
	nextID         uint
	failNextUpdate bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func copySession(s *models.Session) *models.Session {
	out := *s
	out.Selections = s.Selections.Clone()
	return &out
}

func (r *fakeSessionRepo) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session.ID = r.nextID
	r.sessions[session.RoomKey] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) FindByRoomKey(roomKey string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[roomKey]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copySession(session), nil
}

func (r *fakeSessionRepo) Update(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextUpdate {
		r.failNextUpdate = false
		return errors.New("write failed")
	}
	r.sessions[session.RoomKey] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, key)
		}
	}
	return nil
}

type fakeRoundRepo struct {
	mu     sync.Mutex
	rounds []models.Round
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{}
}

func (r *fakeRoundRepo) Create(round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *round
	stored.Selections = round.Selections.Clone()
	stored.ID = uint(len(r.rounds) + 1)
	r.rounds = append(r.rounds, stored)
	return nil
}

func (r *fakeRoundRepo) FindBySessionID(sessionID uint) ([]models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Round
	for _, round := range r.rounds {
		if round.SessionID == sessionID {
			out = append(out, round)
		}
	}
	return out, nil
}

func (r *fakeRoundRepo) FindBySessionAndNumber(sessionID uint, roundNumber int) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.SessionID == sessionID && round.RoundNumber == roundNumber {
			out := round
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoundRepo) DeleteBySessionID(sessionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Round
	for _, round := range r.rounds {
		if round.SessionID != sessionID {
			kept = append(kept, round)
		}
	}
	r.rounds = kept
	return nil
}

type broadcastRecord struct {
	topic string
	event models.Event
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastRecord
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{}
}

func (b *fakeBroadcaster) BroadcastEvent(topic string, event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastRecord{topic: topic, event: event})
}

func (b *fakeBroadcaster) records() []broadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]broadcastRecord, len(b.events))
	copy(out, b.events)
	return out
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uint]*models.ChatMessage
	order    []uint
	nextID   uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uint]*models.ChatMessage)}
}

func (r *fakeMessageRepo) Create(message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	stored := *message
	r.messages[message.ID] = &stored
	r.order = append(r.order, message.ID)
	return nil
}

func (r *fakeMessageRepo) FindByID(id uint) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *message
	return &out, nil
}

func (r *fakeMessageRepo) FindBySessionAndRound(sessionID uint, roundNumber int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatMessage
	for _, id := range r.order {
		message := r.messages[id]
		if message.SessionID == sessionID && message.RoundNumber == roundNumber {
			out = append(out, *message)
		}
	}
	return out, nil
}

type reactionKey struct {
	messageID uint
	userID    string
}

type fakeReactionRepo struct {
	mu        sync.Mutex
	reactions map[reactionKey]models.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[reactionKey]models.Reaction)}
}

// Upsert 模擬 (message_id, user_id) 唯一約束上的覆蓋寫
func (r *fakeReactionRepo) Upsert(reaction *models.Reaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reactions[reactionKey{reaction.MessageID, reaction.UserID}] = *reaction
	return nil
}

func (r *fakeReactionRepo) Delete(messageID uint, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reactions, reactionKey{messageID, userID})
	return nil
}

func (r *fakeReactionRepo) FindByMessageID(messageID uint) ([]models.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reaction
	for key, reaction := range r.reactions {
		if key.messageID == messageID {
			out = append(out, reaction)
		}
	}
	return out, nil
}
