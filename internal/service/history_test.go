package service

import (
	"testing"

	"poker_web/internal/models"
)

func historyRounds(n int) []models.Round {
	rounds := make([]models.Round, 0, n)
	for i := 1; i <= n; i++ {
		rounds = append(rounds, models.Round{SessionID: 1, RoundNumber: i})
	}
	return rounds
}

func TestNavigatorStartsLive(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(3))

	if !n.IsLive() {
		t.Fatalf("navigator should start live")
	}
	if n.Current() != nil {
		t.Fatalf("live view has no current round")
	}
	if !n.CanGoBack() {
		t.Fatalf("history exists, back should be possible")
	}
	if n.CanGoForward() {
		t.Fatalf("live view cannot go forward")
	}
}

func TestNavigatorBackEntersNewestRound(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(3))

	n.GoToPreviousRound()
	if n.IsLive() {
		t.Fatalf("should be viewing history")
	}
	if got := n.Current().RoundNumber; got != 3 {
		t.Fatalf("round = %d, want 3 (newest)", got)
	}
}

func TestNavigatorClampsAtOldest(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(2))

	n.GoToPreviousRound() // -> round 2
	n.GoToPreviousRound() // -> round 1
	if got := n.Current().RoundNumber; got != 1 {
		t.Fatalf("round = %d, want 1", got)
	}
	if n.CanGoBack() {
		t.Fatalf("at oldest round, back must be disabled")
	}

	// 邊界處再翻一次不改變視圖
	n.GoToPreviousRound()
	if got := n.Current().RoundNumber; got != 1 {
		t.Fatalf("round after clamped back = %d, want 1", got)
	}
	if n.CanGoBack() {
		t.Fatalf("clamped back must leave CanGoBack false")
	}
}

func TestNavigatorClampsAtNewest(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(2))
	n.PositionAt(2)

	if n.CanGoForward() {
		t.Fatalf("at newest round, forward must be disabled")
	}
	n.GoToNextRound()
	if n.IsLive() {
		t.Fatalf("forward at newest must not jump to live")
	}
	if got := n.Current().RoundNumber; got != 2 {
		t.Fatalf("round = %d, want 2", got)
	}
}

func TestNavigatorForwardAndCurrent(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(3))
	n.PositionAt(1)

	n.GoToNextRound()
	if got := n.Current().RoundNumber; got != 2 {
		t.Fatalf("round = %d, want 2", got)
	}
	if !n.CanGoBack() || !n.CanGoForward() {
		t.Fatalf("middle of history, both directions should be enabled")
	}

	// 無論位置如何，回到即時視圖
	n.GoToCurrentRound()
	if !n.IsLive() {
		t.Fatalf("GoToCurrentRound must force live")
	}
}

func TestNavigatorEmptyHistory(t *testing.T) {
	n := NewHistoryNavigator(nil)

	if n.CanGoBack() {
		t.Fatalf("no history, back must be disabled")
	}
	n.GoToPreviousRound()
	if !n.IsLive() {
		t.Fatalf("back with no history must stay live")
	}
	if n.Current() != nil {
		t.Fatalf("no round to view")
	}
}

func TestNavigatorPositionAtUnknownRound(t *testing.T) {
	n := NewHistoryNavigator(historyRounds(2))

	n.PositionAt(99)
	if !n.IsLive() {
		t.Fatalf("unknown round must keep live view")
	}
}
