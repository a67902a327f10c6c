package service

import (
	"poker_web/internal/models"
)

// HistoryNavigator 讓參與者在不可變的歷史回合之間前後翻頁
//
// 狀態機：Live ⇄ ViewingHistory(index)。向前向後都在邊界處箝位，
// GoToCurrentRound 無條件回到 Live。處於歷史視圖時，所有會話和
// 聊天的修改操作都必須被調用方拒絕（只讀約定，每個提供修改
// 動作的調用點都要重新檢查）
type HistoryNavigator struct {
	rounds []models.Round // 依回合編號升序
	index  int
	live   bool
}

// NewHistoryNavigator 以升序歷史回合列表初始化，起始狀態為 Live
func NewHistoryNavigator(rounds []models.Round) *HistoryNavigator {
	return &HistoryNavigator{
		rounds: rounds,
		index:  len(rounds) - 1,
		live:   true,
	}
}

// PositionAt 定位到指定回合編號的歷史視圖
// 找不到該回合時維持 Live 不變
func (n *HistoryNavigator) PositionAt(roundNumber int) {
	for i, round := range n.rounds {
		if round.RoundNumber == roundNumber {
			n.index = i
			n.live = false
			return
		}
	}
}

// GoToPreviousRound 翻到上一個歷史回合，最舊一頁處箝位不動
func (n *HistoryNavigator) GoToPreviousRound() {
	if n.live {
		if len(n.rounds) == 0 {
			return
		}
		n.index = len(n.rounds) - 1
		n.live = false
		return
	}
	if n.index > 0 {
		n.index--
	}
}

// GoToNextRound 翻到下一個歷史回合，最新一頁處箝位不動
// 回到即時視圖必須通過 GoToCurrentRound
func (n *HistoryNavigator) GoToNextRound() {
	if n.live {
		return
	}
	if n.index < len(n.rounds)-1 {
		n.index++
	}
}

// GoToCurrentRound 無論當前位置如何，強制回到即時視圖
func (n *HistoryNavigator) GoToCurrentRound() {
	n.live = true
	n.index = len(n.rounds) - 1
}

// IsLive 回報是否處於即時視圖
func (n *HistoryNavigator) IsLive() bool {
	return n.live
}

// Current 回傳正在查看的歷史快照，Live 時為 nil
func (n *HistoryNavigator) Current() *models.Round {
	if n.live || n.index < 0 || n.index >= len(n.rounds) {
		return nil
	}
	return &n.rounds[n.index]
}

// CanGoBack 回報是否還有更舊的回合可翻
func (n *HistoryNavigator) CanGoBack() bool {
	if n.live {
		return len(n.rounds) > 0
	}
	return n.index > 0
}

// CanGoForward 回報是否還有更新的歷史回合可翻
func (n *HistoryNavigator) CanGoForward() bool {
	if n.live {
		return false
	}
	return n.index < len(n.rounds)-1
}
