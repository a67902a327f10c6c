package models

import (
	"encoding/json"
	"fmt"
)

// EventType 定義廣播事件的類型
type EventType string

const (
	// 會話事件
	EventSelectionUpdate EventType = "selection_update"
	EventPlayHand        EventType = "play_hand"
	EventNextRound       EventType = "next_round"
	EventTicketUpdate    EventType = "ticket_update"

	// 聊天事件
	EventChatMessage    EventType = "chat_message"
	EventReactionUpdate EventType = "reaction_update"

	// 在線狀態事件
	EventPresenceSync  EventType = "presence_sync"
	EventPresenceJoin  EventType = "presence_join"
	EventPresenceLeave EventType = "presence_leave"
)

// Event 是廣播頻道上的統一事件信封
// Data 依 Type 對應到下方的 payload 結構，分發處必須窮舉匹配
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SelectionUpdatePayload 對應 selection_update 事件
type SelectionUpdatePayload struct {
	ParticipantID string          `json:"participant_id"`
	Selection     PlayerSelection `json:"selection"`
}

// PlayHandPayload 對應 play_hand 事件
// Selections 只在有人被強制棄權時附帶，以縮小負載
type PlayHandPayload struct {
	GameState     GameState    `json:"game_state"`
	AveragePoints float64      `json:"average_points"`
	Selections    SelectionMap `json:"selections,omitempty"`
}

// NextRoundPayload 對應 next_round 事件，攜帶重置後的完整狀態
type NextRoundPayload struct {
	RoundNumber   int          `json:"round_number"`
	TicketNumber  string       `json:"ticket_number"`
	GameState     GameState    `json:"game_state"`
	AveragePoints float64      `json:"average_points"`
	Selections    SelectionMap `json:"selections"`
}

// TicketUpdatePayload 對應 ticket_update 事件
type TicketUpdatePayload struct {
	TicketNumber string `json:"ticket_number"`
}

// NewEvent 將 payload 編碼進事件信封
func NewEvent(eventType EventType, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: data}, nil
}

// Apply 將單個會話事件折疊進當前狀態
//
// 廣播和資料庫變更通知可能重複送達同一個邏輯更新，
// 因此這裡的每個分支都只做葉值整體覆蓋：同一事件應用兩次
// 與應用一次結果相同（冪等）。跨頻道的事件順序沒有保證，
// 冪等覆蓋是正確性的前提而非優化。
func (s *Session) Apply(event Event) error {
	switch event.Type {
	case EventSelectionUpdate:
		var payload SelectionUpdatePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		if s.Selections == nil {
			s.Selections = SelectionMap{}
		}
		s.Selections[payload.ParticipantID] = payload.Selection
		return nil

	case EventPlayHand:
		var payload PlayHandPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		s.GameState = payload.GameState
		s.AveragePoints = payload.AveragePoints
		if payload.Selections != nil {
			s.Selections = payload.Selections.Clone()
		}
		return nil

	case EventNextRound:
		var payload NextRoundPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		s.RoundNumber = payload.RoundNumber
		s.TicketNumber = payload.TicketNumber
		s.GameState = payload.GameState
		s.AveragePoints = payload.AveragePoints
		s.Selections = payload.Selections.Clone()
		return nil

	case EventTicketUpdate:
		var payload TicketUpdatePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return err
		}
		s.TicketNumber = payload.TicketNumber
		return nil

	default:
		return fmt.Errorf("unknown session event type: %s", event.Type)
	}
}
