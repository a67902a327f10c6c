package models

import (
	"gorm.io/gorm"
)

// ChatMessage 表示會話某一回合內的一條聊天消息
// 消息內容發送後不可修改，表情反應可以獨立增刪
type ChatMessage struct {
	gorm.Model
	SessionID   uint       `gorm:"index:idx_session_round_chat" json:"session_id"`
	RoundNumber int        `gorm:"index:idx_session_round_chat" json:"round_number"`
	AuthorID    string     `gorm:"type:varchar(64)" json:"author_id"`
	AuthorName  string     `json:"author_name"`
	Body        string     `gorm:"type:text" json:"body"`
	ReplyToID   *uint      `json:"reply_to_id,omitempty"` // 弱引用，僅供顯示
	Reactions   []Reaction `gorm:"foreignKey:MessageID" json:"reactions"`
}

// Reaction 表示一位用戶對一條消息的表情反應
// (message_id, user_id) 唯一：每位用戶對每條消息同時只能持有一個表情
// 更換表情以 upsert 覆蓋實現，避免先刪後插造成的閃爍
type Reaction struct {
	gorm.Model
	MessageID uint   `gorm:"uniqueIndex:idx_message_user" json:"message_id"`
	UserID    string `gorm:"type:varchar(64);uniqueIndex:idx_message_user" json:"user_id"`
	UserName  string `json:"user_name"`
	Emoji     string `gorm:"type:varchar(32)" json:"emoji"`
}

// ReplySnapshot 是回覆目標在讀取時去正規化出的顯示片段
// 原消息作者之後改名不會同步更新，屬可接受的過期
type ReplySnapshot struct {
	MessageID  uint   `json:"message_id"`
	AuthorName string `json:"author_name"`
	Excerpt    string `json:"excerpt"`
}

// ChatMessageView 是附帶回覆片段的消息讀取視圖
type ChatMessageView struct {
	ChatMessage
	ReplyTo *ReplySnapshot `json:"reply_to,omitempty"`
}
