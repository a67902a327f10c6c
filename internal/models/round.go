package models

import (
	"gorm.io/gorm"
)

// Round 是回合推進時對會話狀態的不可變快照
// 以 (SessionID, RoundNumber) 為鍵，建立後只讀
type Round struct {
	gorm.Model
	SessionID     uint         `gorm:"uniqueIndex:idx_session_round" json:"session_id"`
	RoundNumber   int          `gorm:"uniqueIndex:idx_session_round" json:"round_number"`
	Selections    SelectionMap `gorm:"type:jsonb" json:"selections"`
	AveragePoints float64      `json:"average_points"`
	TicketNumber  string       `json:"ticket_number"`
	GameState     GameState    `gorm:"type:varchar(20)" json:"game_state"`
}

// SnapshotRound 從當前會話狀態建立回合快照
func SnapshotRound(s *Session) *Round {
	return &Round{
		SessionID:     s.ID,
		RoundNumber:   s.RoundNumber,
		Selections:    s.Selections.Clone(),
		AveragePoints: s.AveragePoints,
		TicketNumber:  s.TicketNumber,
		GameState:     s.GameState,
	}
}
