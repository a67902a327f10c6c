package models

import (
	"time"
)

// PresenceWindow 定義在線判定的滑動窗口
const PresenceWindow = 5 * time.Minute

// PresenceEntry 表示頻道上一位參與者的在線記錄
// 純臨時資料，由實時層持有，永不寫入資料庫
type PresenceEntry struct {
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	LastSeen      time.Time `json:"last_seen"`
}

// Active 判斷該記錄在給定時間點是否視為在線
func (p PresenceEntry) Active(now time.Time) bool {
	return now.Sub(p.LastSeen) <= PresenceWindow
}
