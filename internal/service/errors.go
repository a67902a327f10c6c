package service

import "errors"

// 會話操作被本地拒絕時回傳的錯誤，這類錯誤不會觸發任何後端寫入
var (
	ErrSelectionLocked    = errors.New("選牌已鎖定，無法修改")
	ErrInvalidPoints      = errors.New("無效的點數")
	ErrUnknownParticipant = errors.New("參與者不在此會話中")
	ErrNotOwnSelection    = errors.New("只能鎖定或解鎖自己的選牌")
	ErrHandAlreadyPlayed  = errors.New("本回合已開牌")
	ErrEmptyMessage       = errors.New("消息內容不能為空")
	ErrHistoricalRound    = errors.New("歷史回合為只讀，無法修改")
)
