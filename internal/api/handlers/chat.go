package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"poker_web/internal/service"
)

// ChatHandler 處理與回合聊天相關的請求
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 創建一個新的 ChatHandler 實例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetMessages 獲取某回合的消息，切換回合時整批替換
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roundNumber, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的回合編號"})
		return
	}

	messages, err := h.chatService.FetchHistory(c.Param("key"), roundNumber)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage 發送消息到會話的當前回合
// round_number 是發送者眼中的回合，與即時回合不符時會被拒絕
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var input struct {
		RoundNumber int    `json:"round_number" binding:"required"`
		Body        string `json:"body" binding:"required"`
		ReplyToID   *uint  `json:"reply_to_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authorID, authorName := participantFromContext(c)
	message, err := h.chatService.Send(c.Param("key"), input.RoundNumber, authorID, authorName, input.Body, input.ReplyToID)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// SetReaction 添加或更換請求者對消息的表情
func (h *ChatHandler) SetReaction(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的消息ID"})
		return
	}

	var input struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, userName := participantFromContext(c)
	if err := h.chatService.AddReaction(c.Param("key"), uint(messageID), userID, userName, input.Emoji); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "表情已更新"})
}

// RemoveReaction 移除請求者對消息的表情
func (h *ChatHandler) RemoveReaction(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的消息ID"})
		return
	}

	userID, _ := participantFromContext(c)
	if err := h.chatService.RemoveReaction(c.Param("key"), uint(messageID), userID); err != nil {
		respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "表情已移除"})
}
