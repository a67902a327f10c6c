package models

import (
	"reflect"
	"testing"
)

func newTestSession() *Session {
	return NewSession("room-1", map[string]string{
		"a": "Alice",
		"b": "Bob",
	})
}

func TestApplySelectionUpdateIdempotent(t *testing.T) {
	session := newTestSession()

	event, err := NewEvent(EventSelectionUpdate, SelectionUpdatePayload{
		ParticipantID: "a",
		Selection:     PlayerSelection{Points: 8, Locked: true, Name: "Alice"},
	})
	if err != nil {
		t.Fatalf("new event error: %v", err)
	}

	if err := session.Apply(event); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	once := session.Selections.Clone()

	// 同一事件重複送達必須得到相同的狀態
	if err := session.Apply(event); err != nil {
		t.Fatalf("second apply error: %v", err)
	}
	if !reflect.DeepEqual(once, session.Selections) {
		t.Fatalf("selections after duplicate apply = %v, want %v", session.Selections, once)
	}
	if got := session.Selections["a"]; got.Points != 8 || !got.Locked {
		t.Fatalf("selection a = %+v, want points 8 locked", got)
	}
}

func TestApplyPlayHandWithoutSelections(t *testing.T) {
	session := newTestSession()

	event, err := NewEvent(EventPlayHand, PlayHandPayload{
		GameState:     GameStatePlaying,
		AveragePoints: 6.5,
	})
	if err != nil {
		t.Fatalf("new event error: %v", err)
	}

	if err := session.Apply(event); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if session.GameState != GameStatePlaying {
		t.Fatalf("game state = %s, want playing", session.GameState)
	}
	if session.AveragePoints != 6.5 {
		t.Fatalf("average = %v, want 6.5", session.AveragePoints)
	}
	// 負載未附帶選牌時，本地選牌保持不變
	if got := session.Selections["b"]; got.Points != 1 || got.Locked {
		t.Fatalf("selection b = %+v, want untouched", got)
	}
}

func TestApplyNextRoundReplacesState(t *testing.T) {
	session := newTestSession()
	session.GameState = GameStatePlaying
	session.AveragePoints = 5

	reset := SelectionMap{
		"a": {Points: 1, Locked: false, Name: "Alice"},
		"b": {Points: 1, Locked: false, Name: "Bob"},
	}
	event, err := NewEvent(EventNextRound, NextRoundPayload{
		RoundNumber:  2,
		TicketNumber: "TICKET-7",
		GameState:    GameStateSelection,
		Selections:   reset,
	})
	if err != nil {
		t.Fatalf("new event error: %v", err)
	}

	if err := session.Apply(event); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if session.RoundNumber != 2 {
		t.Fatalf("round = %d, want 2", session.RoundNumber)
	}
	if session.TicketNumber != "TICKET-7" {
		t.Fatalf("ticket = %q, want TICKET-7", session.TicketNumber)
	}
	if session.GameState != GameStateSelection || session.AveragePoints != 0 {
		t.Fatalf("state = %s/%v, want selection/0", session.GameState, session.AveragePoints)
	}
	if !reflect.DeepEqual(session.Selections, reset) {
		t.Fatalf("selections = %v, want %v", session.Selections, reset)
	}
}

func TestApplyTicketUpdate(t *testing.T) {
	session := newTestSession()

	event, err := NewEvent(EventTicketUpdate, TicketUpdatePayload{TicketNumber: "JIRA-42"})
	if err != nil {
		t.Fatalf("new event error: %v", err)
	}
	if err := session.Apply(event); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if session.TicketNumber != "JIRA-42" {
		t.Fatalf("ticket = %q, want JIRA-42", session.TicketNumber)
	}
}

func TestApplyUnknownEvent(t *testing.T) {
	session := newTestSession()

	event, err := NewEvent(EventType("bogus"), map[string]string{})
	if err != nil {
		t.Fatalf("new event error: %v", err)
	}
	if err := session.Apply(event); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}

func TestComputeAverage(t *testing.T) {
	session := &Session{Selections: SelectionMap{
		"a": {Points: 5, Locked: true},
		"b": {Points: 8, Locked: true},
		"c": {Points: AbstainPoints, Locked: true},
	}}
	if got := session.ComputeAverage(); got != 6.5 {
		t.Fatalf("average = %v, want 6.5", got)
	}
}

func TestComputeAverageAllAbstained(t *testing.T) {
	session := &Session{Selections: SelectionMap{
		"a": {Points: AbstainPoints, Locked: true},
		"b": {Points: AbstainPoints, Locked: true},
	}}
	if got := session.ComputeAverage(); got != 0 {
		t.Fatalf("average = %v, want 0", got)
	}
}

func TestValidPoints(t *testing.T) {
	for _, p := range AllowedPoints {
		if !ValidPoints(p) {
			t.Fatalf("points %d should be valid", p)
		}
	}
	if !ValidPoints(AbstainPoints) {
		t.Fatalf("abstain sentinel should be valid")
	}
	for _, p := range []int{0, 4, 6, 40, -2} {
		if ValidPoints(p) {
			t.Fatalf("points %d should be invalid", p)
		}
	}
}
