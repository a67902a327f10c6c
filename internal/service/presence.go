package service

import (
	"sort"
	"sync"
	"time"

	"poker_web/internal/models"
)

// presenceDirectory 追蹤各頻道上參與者的在線記錄
// 純記憶體資料，連接斷開或超出滑動窗口即視為離線
type presenceDirectory struct {
	mu      sync.RWMutex
	entries map[string]map[string]*models.PresenceEntry // topic -> participantID -> entry
}

func newPresenceDirectory() *presenceDirectory {
	return &presenceDirectory{
		entries: make(map[string]map[string]*models.PresenceEntry),
	}
}

// Track 登記參與者在頻道上的在線狀態，回傳是否為新加入
func (d *presenceDirectory) Track(topic, participantID, name string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.entries[topic] == nil {
		d.entries[topic] = make(map[string]*models.PresenceEntry)
	}
	_, existed := d.entries[topic][participantID]
	d.entries[topic][participantID] = &models.PresenceEntry{
		ParticipantID: participantID,
		Name:          name,
		LastSeen:      now,
	}
	return !existed
}

// Touch 刷新參與者的最後活躍時間（收到消息或 pong 時調用）
func (d *presenceDirectory) Touch(topic, participantID string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if entry, ok := d.entries[topic][participantID]; ok {
		entry.LastSeen = now
	}
}

// Untrack 移除參與者的在線記錄，頻道空了就刪除頻道
func (d *presenceDirectory) Untrack(topic, participantID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if topicEntries, ok := d.entries[topic]; ok {
		delete(topicEntries, participantID)
		if len(topicEntries) == 0 {
			delete(d.entries, topic)
		}
	}
}

// Active 回傳頻道上仍在滑動窗口內的參與者，依 ID 排序以便穩定輸出
func (d *presenceDirectory) Active(topic string, now time.Time) []models.PresenceEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var active []models.PresenceEntry
	for _, entry := range d.entries[topic] {
		if entry.Active(now) {
			active = append(active, *entry)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ParticipantID < active[j].ParticipantID
	})
	return active
}
