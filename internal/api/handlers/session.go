package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"poker_web/internal/service"
)

// SessionHandler 處理與估點會話相關的請求
type SessionHandler struct {
	sessionService *service.SessionService
	userService    *service.UserService
}

// NewSessionHandler 創建一個新的 SessionHandler 實例
func NewSessionHandler(sessionService *service.SessionService, userService *service.UserService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		userService:    userService,
	}
}

// participantFromContext 取出請求者的參與者 ID 和顯示名稱
func participantFromContext(c *gin.Context) (string, string) {
	userID, _ := c.Get("userID")
	userName, _ := c.Get("userName")
	return strconv.FormatUint(uint64(userID.(uint)), 10), userName.(string)
}

// CreateRoom 鑄造一個匿名房間鍵
func (h *SessionHandler) CreateRoom(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"room_key": uuid.New().String()})
}

// GetOrCreateSession 獲取房間的會話，不存在時初始化
func (h *SessionHandler) GetOrCreateSession(c *gin.Context) {
	var input struct {
		RoomKey        string `json:"room_key" binding:"required"`
		ParticipantIDs []uint `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 解析各參與者的顯示名稱，請求者一定包含在內
	actorID, actorName := participantFromContext(c)
	participants := map[string]string{actorID: actorName}
	for _, id := range input.ParticipantIDs {
		user, err := h.userService.GetUserByID(id)
		if err != nil {
			continue // 查不到的參與者跳過，不阻斷會話創建
		}
		participants[user.ParticipantID()] = user.Username
	}

	session, err := h.sessionService.GetOrCreate(input.RoomKey, participants)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法載入會話"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSession 獲取會話當前狀態
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetOrCreate(c.Param("key"), map[string]string{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法載入會話"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSelection 更新請求者自己的選牌
func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	var input struct {
		Points int `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, _ := participantFromContext(c)
	session, err := h.sessionService.UpdateSelection(c.Param("key"), actorID, input.Points)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ToggleLock 鎖定或解鎖請求者自己的選牌
func (h *SessionHandler) ToggleLock(c *gin.Context) {
	var input struct {
		ParticipantID string `json:"participant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, _ := participantFromContext(c)
	session, err := h.sessionService.ToggleLock(c.Param("key"), input.ParticipantID, actorID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// PlayHand 開牌
func (h *SessionHandler) PlayHand(c *gin.Context) {
	session, err := h.sessionService.PlayHand(c.Param("key"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// NextRound 快照當前回合並推進到下一回合
func (h *SessionHandler) NextRound(c *gin.Context) {
	var input struct {
		TicketNumber string `json:"ticket_number"`
	}
	// 票號可省略，空請求體視為不帶票號
	_ = c.ShouldBindJSON(&input)

	session, err := h.sessionService.NextRound(c.Param("key"), input.TicketNumber)
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateTicketNumber 更新票號
// commit=false 的輸入走防抖合併，commit=true（失焦或送出）立即提交
func (h *SessionHandler) UpdateTicketNumber(c *gin.Context) {
	var input struct {
		Value  string `json:"value"`
		Commit bool   `json:"commit"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomKey := c.Param("key")
	if input.Commit {
		if err := h.sessionService.CommitTicketNumber(roomKey, input.Value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新票號失敗"})
			return
		}
	} else {
		h.sessionService.UpdateTicketNumber(roomKey, input.Value)
	}

	c.JSON(http.StatusOK, gin.H{"message": "票號已更新"})
}

// ListRounds 獲取歷史回合快照列表
func (h *SessionHandler) ListRounds(c *gin.Context) {
	rounds, err := h.sessionService.ListRounds(c.Param("key"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// NavigateRounds 在歷史回合間翻頁
// from 為當前查看的回合編號（省略表示即時視圖），dir 為 prev/next/current
func (h *SessionHandler) NavigateRounds(c *gin.Context) {
	rounds, err := h.sessionService.ListRounds(c.Param("key"))
	if err != nil {
		respondSessionError(c, err)
		return
	}

	navigator := service.NewHistoryNavigator(rounds)
	if from, err := strconv.Atoi(c.Query("from")); err == nil {
		navigator.PositionAt(from)
	}

	switch c.Query("dir") {
	case "prev":
		navigator.GoToPreviousRound()
	case "next":
		navigator.GoToNextRound()
	case "current":
		navigator.GoToCurrentRound()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的翻頁方向"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"live":           navigator.IsLive(),
		"round":          navigator.Current(),
		"can_go_back":    navigator.CanGoBack(),
		"can_go_forward": navigator.CanGoForward(),
	})
}

// DeleteAllRounds 管理操作：刪除會話的全部歷史並重置回合編號
func (h *SessionHandler) DeleteAllRounds(c *gin.Context) {
	session, err := h.sessionService.DeleteAllRounds(c.Param("key"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// respondSessionError 把服務層錯誤映射為 HTTP 響應
// 本地拒絕的操作回 400，找不到回 404，其餘視為暫時性後端故障
func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelectionLocked),
		errors.Is(err, service.ErrInvalidPoints),
		errors.Is(err, service.ErrUnknownParticipant),
		errors.Is(err, service.ErrNotOwnSelection),
		errors.Is(err, service.ErrHandAlreadyPlayed),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrHistoricalRound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "會話不存在"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "後端暫時不可用，請重試"})
	}
}
