package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"poker_web/internal/service"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	realtime       *service.RealtimeManager
	sessionService *service.SessionService
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(realtime *service.RealtimeManager, sessionService *service.SessionService) *WebSocketHandler {
	return &WebSocketHandler{
		realtime:       realtime,
		sessionService: sessionService,
	}
}

// HandleSessionWebSocket 訂閱會話廣播頻道
// 同一連接內事件按序送達；連接斷開即取消訂閱並更新在線名單
func (h *WebSocketHandler) HandleSessionWebSocket(c *gin.Context) {
	participantID, name := participantFromContext(c)
	roomKey := c.Param("key")

	// 會話在首次訪問時惰性創建，訂閱前確保它存在
	if _, err := h.sessionService.GetOrCreate(roomKey, map[string]string{participantID: name}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法載入會話"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	h.realtime.HandleConnection(conn, service.SessionTopic(roomKey), participantID, name)
}

// HandleChatWebSocket 訂閱某回合的聊天頻道
func (h *WebSocketHandler) HandleChatWebSocket(c *gin.Context) {
	participantID, name := participantFromContext(c)
	roomKey := c.Param("key")

	roundNumber, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "無效的回合編號"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "升級WebSocket失敗"})
		return
	}

	h.realtime.HandleConnection(conn, service.ChatTopic(roomKey, roundNumber), participantID, name)
}

// GetPresence 獲取會話頻道上仍在在線窗口內的參與者
func (h *WebSocketHandler) GetPresence(c *gin.Context) {
	entries := h.realtime.ActiveParticipants(service.SessionTopic(c.Param("key")))
	c.JSON(http.StatusOK, gin.H{
		"participants": entries,
		"connections":  h.realtime.TopicClients(service.SessionTopic(c.Param("key"))),
	})
}
