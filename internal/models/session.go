package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// GameState 定義會話狀態的類型
type GameState string

const (
	GameStateSelection GameState = "selection" // 選牌階段
	GameStatePlaying   GameState = "playing"   // 已開牌，平均值已凍結
)

// AbstainPoints 表示棄權的哨兵值，不參與平均值計算
const AbstainPoints = -1

// AllowedPoints 是可選點數的固定集合
var AllowedPoints = []int{1, 2, 3, 5, 8, 13, 21}

// ValidPoints 檢查點數是否在允許的集合內（含棄權哨兵值）
func ValidPoints(points int) bool {
	if points == AbstainPoints {
		return true
	}
	for _, p := range AllowedPoints {
		if p == points {
			return true
		}
	}
	return false
}

// PlayerSelection 表示一位參與者當前的選牌
type PlayerSelection struct {
	Points int    `json:"points"`
	Locked bool   `json:"locked"`
	Name   string `json:"name"` // 加入時的顯示名稱，不跟隨之後的資料更新
}

// SelectionMap 以參與者 ID 為鍵的選牌映射，整張存為 jsonb
type SelectionMap map[string]PlayerSelection

func (m SelectionMap) Value() (driver.Value, error) {
	if m == nil {
		m = SelectionMap{}
	}
	return json.Marshal(m)
}

func (m *SelectionMap) Scan(value interface{}) error {
	if value == nil {
		*m = SelectionMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for SelectionMap")
	}
	return json.Unmarshal(raw, m)
}

// Clone 回傳映射的深拷貝，用於回合快照
func (m SelectionMap) Clone() SelectionMap {
	out := make(SelectionMap, len(m))
	for id, sel := range m {
		out[id] = sel
	}
	return out
}

// Session 表示一個團隊（或匿名房間）的共享估點會話
type Session struct {
	gorm.Model
	RoomKey       string       `gorm:"uniqueIndex;not null" json:"room_key"`
	Selections    SelectionMap `gorm:"type:jsonb" json:"selections"`
	GameState     GameState    `gorm:"type:varchar(20)" json:"game_state"`
	AveragePoints float64      `json:"average_points"` // 僅在 playing 狀態有意義
	TicketNumber  string       `json:"ticket_number"`
	RoundNumber   int          `json:"round_number"` // 單調遞增
}

// NewSession 以每位參與者 {points:1, locked:false} 的初始選牌建立會話
func NewSession(roomKey string, participants map[string]string) *Session {
	selections := make(SelectionMap, len(participants))
	for id, name := range participants {
		selections[id] = PlayerSelection{Points: 1, Locked: false, Name: name}
	}
	return &Session{
		RoomKey:     roomKey,
		Selections:  selections,
		GameState:   GameStateSelection,
		RoundNumber: 1,
	}
}

// ComputeAverage 計算所有未棄權參與者點數的算術平均值
// 沒有任何有效點數時回傳 0
func (s *Session) ComputeAverage() float64 {
	sum, count := 0, 0
	for _, sel := range s.Selections {
		if sel.Points != AbstainPoints {
			sum += sel.Points
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}
