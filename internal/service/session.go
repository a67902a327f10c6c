package service

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"poker_web/internal/models"
	"poker_web/internal/repository"
)

// SessionService 維護每個房間唯一的權威會話狀態
//
// 寫入路徑固定為三步：先改本地載入的狀態，再整行持久化，
// 最後向會話頻道廣播對應事件，讓其他客戶端不必等待自己的
// 重新拉取。廣播與資料庫變更通知可能重複描述同一次更新，
// 接收端以 Session.Apply 的冪等覆蓋消化
type SessionService struct {
	sessionRepo     repository.SessionRepository
	roundRepo       repository.RoundRepository
	broadcaster     Broadcaster
	ticketDebouncer *TicketDebouncer
}

func NewSessionService(sessionRepo repository.SessionRepository, roundRepo repository.RoundRepository, broadcaster Broadcaster) *SessionService {
	s := &SessionService{
		sessionRepo: sessionRepo,
		roundRepo:   roundRepo,
		broadcaster: broadcaster,
	}
	s.ticketDebouncer = NewTicketDebouncer(DefaultTicketDebounceDelay, s.commitTicketNumber)
	return s
}

// GetOrCreate 獲取房間的會話，不存在時以全員 {points:1, locked:false} 初始化
// 後端不可達時把錯誤交給上層呈現為錯誤狀態，不會中斷其他流程
func (s *SessionService) GetOrCreate(roomKey string, participants map[string]string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = models.NewSession(roomKey, participants)
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSelection 更新參與者的選牌
// 已鎖定的選牌拒絕修改（本地拒絕，不發起任何網路調用）
func (s *SessionService) UpdateSelection(roomKey, participantID string, points int) (*models.Session, error) {
	if !models.ValidPoints(points) {
		return nil, ErrInvalidPoints
	}

	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	selection, ok := session.Selections[participantID]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	if selection.Locked {
		return nil, ErrSelectionLocked
	}

	selection.Points = points
	session.Selections[participantID] = selection

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.broadcast(roomKey, models.EventSelectionUpdate, models.SelectionUpdatePayload{
		ParticipantID: participantID,
		Selection:     selection,
	})
	return session, nil
}

// ToggleLock 鎖定或解鎖參與者自己的選牌
// 調用者必須帶上自己的參與者 ID，不允許操作他人的選牌
func (s *SessionService) ToggleLock(roomKey, participantID, actorID string) (*models.Session, error) {
	if participantID != actorID {
		return nil, ErrNotOwnSelection
	}

	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	selection, ok := session.Selections[participantID]
	if !ok {
		return nil, ErrUnknownParticipant
	}

	selection.Locked = !selection.Locked
	session.Selections[participantID] = selection

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.broadcast(roomKey, models.EventSelectionUpdate, models.SelectionUpdatePayload{
		ParticipantID: participantID,
		Selection:     selection,
	})
	return session, nil
}

// PlayHand 開牌：selection -> playing
// 所有未鎖定的選牌被強制棄權並鎖定，平均值只計入未棄權者，
// 無人有效時為 0。廣播的負載僅在發生強制棄權時附帶選牌映射
func (s *SessionService) PlayHand(roomKey string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	if session.GameState == models.GameStatePlaying {
		return nil, ErrHandAlreadyPlayed
	}

	forced := false
	for id, selection := range session.Selections {
		if !selection.Locked {
			selection.Points = models.AbstainPoints
			selection.Locked = true
			session.Selections[id] = selection
			forced = true
		}
	}

	session.GameState = models.GameStatePlaying
	session.AveragePoints = session.ComputeAverage()

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	payload := models.PlayHandPayload{
		GameState:     session.GameState,
		AveragePoints: session.AveragePoints,
	}
	if forced {
		payload.Selections = session.Selections
	}
	s.broadcast(roomKey, models.EventPlayHand, payload)
	return session, nil
}

// NextRound 先把當前會話快照進歷史，再重置進入下一回合
// 所有客戶端通過廣播一起推進
func (s *SessionService) NextRound(roomKey, ticketNumber string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	if err := s.roundRepo.Create(models.SnapshotRound(session)); err != nil {
		return nil, err
	}

	for id, selection := range session.Selections {
		selection.Points = 1
		selection.Locked = false
		session.Selections[id] = selection
	}
	session.GameState = models.GameStateSelection
	session.AveragePoints = 0
	session.TicketNumber = ticketNumber
	session.RoundNumber++

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.broadcast(roomKey, models.EventNextRound, models.NextRoundPayload{
		RoundNumber:   session.RoundNumber,
		TicketNumber:  session.TicketNumber,
		GameState:     session.GameState,
		AveragePoints: session.AveragePoints,
		Selections:    session.Selections,
	})
	return session, nil
}

// UpdateTicketNumber 記錄票號輸入，在安靜期後合併為一次寫入
func (s *SessionService) UpdateTicketNumber(roomKey, value string) {
	s.ticketDebouncer.Set(roomKey, value)
}

// CommitTicketNumber 立即提交票號（失焦或明確送出時調用）
// 取消尚未到期的防抖計時器，避免過期的寫入覆蓋新值
func (s *SessionService) CommitTicketNumber(roomKey, value string) error {
	s.ticketDebouncer.Set(roomKey, value)
	return s.ticketDebouncer.Flush(roomKey)
}

// commitTicketNumber 是防抖器到期後實際執行的寫入
// 寫入失敗時重新拉取權威狀態並廣播，讓各端自我修正
func (s *SessionService) commitTicketNumber(roomKey, value string) error {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return err
	}

	session.TicketNumber = value
	if err := s.sessionRepo.Update(session); err != nil {
		log.Printf("ticket number write failed, refetching: %v", err)
		if fresh, ferr := s.sessionRepo.FindByRoomKey(roomKey); ferr == nil {
			s.broadcast(roomKey, models.EventTicketUpdate, models.TicketUpdatePayload{
				TicketNumber: fresh.TicketNumber,
			})
		}
		return err
	}

	s.broadcast(roomKey, models.EventTicketUpdate, models.TicketUpdatePayload{
		TicketNumber: value,
	})
	return nil
}

// ListRounds 依回合編號升序回傳歷史快照
func (s *SessionService) ListRounds(roomKey string) ([]models.Round, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	return s.roundRepo.FindBySessionID(session.ID)
}

// GetRound 取單個歷史快照
func (s *SessionService) GetRound(roomKey string, roundNumber int) (*models.Round, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}
	return s.roundRepo.FindBySessionAndNumber(session.ID, roundNumber)
}

// DeleteAllRounds 管理操作：清空歷史並把會話重置回第 1 回合
func (s *SessionService) DeleteAllRounds(roomKey string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByRoomKey(roomKey)
	if err != nil {
		return nil, err
	}

	if err := s.roundRepo.DeleteBySessionID(session.ID); err != nil {
		return nil, err
	}

	for id, selection := range session.Selections {
		selection.Points = 1
		selection.Locked = false
		session.Selections[id] = selection
	}
	session.GameState = models.GameStateSelection
	session.AveragePoints = 0
	session.TicketNumber = ""
	session.RoundNumber = 1

	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.broadcast(roomKey, models.EventNextRound, models.NextRoundPayload{
		RoundNumber:   session.RoundNumber,
		TicketNumber:  session.TicketNumber,
		GameState:     session.GameState,
		AveragePoints: session.AveragePoints,
		Selections:    session.Selections,
	})
	return session, nil
}

func (s *SessionService) broadcast(roomKey string, eventType models.EventType, payload interface{}) {
	event, err := models.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("event encoding error: %v", err)
		return
	}
	s.broadcaster.BroadcastEvent(SessionTopic(roomKey), event)
}
