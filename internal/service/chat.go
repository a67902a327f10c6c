package service

import (
	"log"
	"regexp"
	"strings"

	"poker_web/internal/models"
	"poker_web/internal/repository"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// StripMarkup 去除富文本標記，用於空消息判定和回覆片段
func StripMarkup(body string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(body, ""))
}

const replyExcerptLimit = 80

// ChatService 維護每個 (會話, 回合) 的有序消息流
// 消息流只追加，表情反應可獨立變更
type ChatService struct {
	messageRepo  repository.ChatMessageRepository
	reactionRepo repository.ReactionRepository
	sessionRepo  repository.SessionRepository
	broadcaster  Broadcaster
}

func NewChatService(messageRepo repository.ChatMessageRepository, reactionRepo repository.ReactionRepository, sessionRepo repository.SessionRepository, broadcaster Broadcaster) *ChatService {
	return &ChatService{
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		sessionRepo:  sessionRepo,
		broadcaster:  broadcaster,
	}
}

// FetchHistory 取某回合的消息，依創建時間升序
// 回覆目標在讀取時去正規化成顯示片段
func (s *ChatService) FetchHistory(roomKey string, roundNumber int) ([]models.ChatMessageView, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.FindBySessionAndRound(session.ID, roundNumber)
	if err != nil {
		return nil, err
	}

	views := make([]models.ChatMessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, s.buildView(message))
	}
	return views, nil
}

// Send 發送一條消息到會話的當前回合
// 去除標記後為空的消息、以及對歷史回合的發送都會被本地拒絕。
// 消息不做樂觀插入：發送者和其他人一樣通過變更通知看到它，
// 渲染路徑完全一致，也不會出現重複插入
func (s *ChatService) Send(roomKey string, roundNumber int, authorID, authorName, body string, replyToID *uint) (*models.ChatMessageView, error) {
	if StripMarkup(body) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	if roundNumber != session.RoundNumber {
		return nil, ErrHistoricalRound
	}

	message := &models.ChatMessage{
		SessionID:   session.ID,
		RoundNumber: session.RoundNumber,
		AuthorID:    authorID,
		AuthorName:  authorName,
		Body:        body,
		ReplyToID:   replyToID,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	view := s.buildView(*message)
	s.broadcastChat(roomKey, session.RoundNumber, models.EventChatMessage, view)
	return &view, nil
}

// AddReaction 添加或更換用戶對消息的表情
// 同一 (消息, 用戶) 只會存在一條記錄，更換表情為覆蓋寫。
// 歷史回合的消息和發送一樣是只讀的，表情變更同樣被本地拒絕
func (s *ChatService) AddReaction(roomKey string, messageID uint, userID, userName, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return ErrEmptyMessage
	}

	message, err := s.liveMessage(roomKey, messageID)
	if err != nil {
		return err
	}

	reaction := &models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		UserName:  userName,
		Emoji:     emoji,
	}
	if err := s.reactionRepo.Upsert(reaction); err != nil {
		return err
	}

	s.broadcastReactions(roomKey, message)
	return nil
}

// RemoveReaction 移除用戶對消息的表情
func (s *ChatService) RemoveReaction(roomKey string, messageID uint, userID string) error {
	message, err := s.liveMessage(roomKey, messageID)
	if err != nil {
		return err
	}

	if err := s.reactionRepo.Delete(messageID, userID); err != nil {
		return err
	}

	s.broadcastReactions(roomKey, message)
	return nil
}

// liveMessage 取出消息並確認其屬於會話當前回合
// 回合已推進的消息視為歷史存檔，任何變更一律拒絕
func (s *ChatService) liveMessage(roomKey string, messageID uint) (*models.ChatMessage, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	if message.RoundNumber != session.RoundNumber {
		return nil, ErrHistoricalRound
	}
	return message, nil
}

// buildView 組裝消息的讀取視圖，附帶回覆目標的顯示片段
// 原作者之後改名不會同步到已生成的片段，屬可接受的過期
func (s *ChatService) buildView(message models.ChatMessage) models.ChatMessageView {
	view := models.ChatMessageView{ChatMessage: message}
	if message.ReplyToID == nil {
		return view
	}

	replied, err := s.messageRepo.FindByID(*message.ReplyToID)
	if err != nil {
		// 回覆目標可能已不可見，僅記錄，不影響消息本身
		log.Printf("reply lookup failed for message %d: %v", *message.ReplyToID, err)
		return view
	}

	excerpt := StripMarkup(replied.Body)
	if runes := []rune(excerpt); len(runes) > replyExcerptLimit {
		excerpt = string(runes[:replyExcerptLimit])
	}
	view.ReplyTo = &models.ReplySnapshot{
		MessageID:  replied.ID,
		AuthorName: replied.AuthorName,
		Excerpt:    excerpt,
	}
	return view
}

// broadcastReactions 重新載入消息的表情集合並廣播變更
func (s *ChatService) broadcastReactions(roomKey string, message *models.ChatMessage) {
	reactions, err := s.reactionRepo.FindByMessageID(message.ID)
	if err != nil {
		log.Printf("reaction reload error: %v", err)
		return
	}
	s.broadcastChat(roomKey, message.RoundNumber, models.EventReactionUpdate, map[string]interface{}{
		"message_id": message.ID,
		"reactions":  reactions,
	})
}

func (s *ChatService) broadcastChat(roomKey string, roundNumber int, eventType models.EventType, payload interface{}) {
	event, err := models.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("event encoding error: %v", err)
		return
	}
	s.broadcaster.BroadcastEvent(ChatTopic(roomKey, roundNumber), event)
}
