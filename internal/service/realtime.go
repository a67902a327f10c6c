package service

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"poker_web/internal/models"
)

// Broadcaster 是服務層對外發佈事件的最小介面
type Broadcaster interface {
	BroadcastEvent(topic string, event models.Event)
}

// SessionTopic 回傳會話廣播頻道的主題字串
func SessionTopic(roomKey string) string {
	return "session:" + roomKey
}

// ChatTopic 回傳聊天頻道的主題字串，每個回合一條頻道
func ChatTopic(roomKey string, roundNumber int) string {
	return "chat:" + roomKey + ":" + strconv.Itoa(roundNumber)
}

// Client 代表一個訂閱了某主題的 WebSocket 客戶端連接
type Client struct {
	Conn          *websocket.Conn   // WebSocket 連接
	ParticipantID string            // 參與者 ID
	Name          string            // 顯示名稱
	Topic         string            // 訂閱的主題
	SendChan      chan models.Event // 事件發送通道，用於異步傳送
	done          chan struct{}     // 移除時由 removeClient 關閉，通知 writePump 退出
}

// RealtimeManager 管理所有主題的 WebSocket 連接、事件廣播與在線狀態
type RealtimeManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: topic -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
	presence   *presenceDirectory
}

// NewRealtimeManager 創建並初始化新的實時管理器
func NewRealtimeManager() *RealtimeManager {
	return &RealtimeManager{
		clients:  make(map[string]map[*Client]bool),
		presence: newPresenceDirectory(),
	}
}

// HandleConnection 處理新的 WebSocket 連接請求
// 連接斷開時自動清理訂閱並廣播離線事件
func (m *RealtimeManager) HandleConnection(conn *websocket.Conn, topic, participantID, name string) {
	client := &Client{
		Conn:          conn,
		ParticipantID: participantID,
		Name:          name,
		Topic:         topic,
		SendChan:      make(chan models.Event, 256), // 設置緩衝大小為 256 的事件通道
		done:          make(chan struct{}),
	}

	m.addClient(client)

	// 清理統一交給 removeClient，重複調用是無害的
	defer m.removeClient(client)

	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續監聽從客戶端接收的廣播事件並轉發給同主題的所有訂閱者
// 同一連接內事件按序送達；不同主題之間沒有順序保證，
// 接收端必須依靠 Session.Apply 的冪等覆蓋來消化重複或亂序
func (m *RealtimeManager) readPump(client *Client) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		m.presence.Touch(client.Topic, client.ParticipantID, time.Now())
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var event models.Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("event parse error: %v", err)
			continue
		}

		m.presence.Touch(client.Topic, client.ParticipantID, time.Now())

		// 轉發給主題上的所有訂閱者（含發送者本人）
		m.BroadcastEvent(client.Topic, event)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (m *RealtimeManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case event := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, eventBytes); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastEvent 向主題上的所有客戶端廣播事件
// 先在鎖內複製訂閱者快照，釋放鎖後才逐一投遞，
// 避免與 removeClient 的 map 修改競爭；SendChan 不會被關閉，投遞永不 panic
func (m *RealtimeManager) BroadcastEvent(topic string, event models.Event) {
	m.clientsMux.RLock()
	clients := make([]*Client, 0, len(m.clients[topic]))
	for client := range m.clients[topic] {
		clients = append(clients, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range clients {
		select {
		case client.SendChan <- event:
			// 事件成功加入發送隊列
		default:
			// 客戶端隊列已滿，視為失速連接並移除
			m.removeClient(client)
		}
	}
}

// ActiveParticipants 回傳主題上仍在在線窗口內的參與者
func (m *RealtimeManager) ActiveParticipants(topic string) []models.PresenceEntry {
	return m.presence.Active(topic, time.Now())
}

// addClient 安全地添加新的客戶端連接並廣播加入事件
func (m *RealtimeManager) addClient(client *Client) {
	m.clientsMux.Lock()
	if m.clients[client.Topic] == nil {
		m.clients[client.Topic] = make(map[*Client]bool)
	}
	m.clients[client.Topic][client] = true
	m.clientsMux.Unlock()

	now := time.Now()
	joined := m.presence.Track(client.Topic, client.ParticipantID, client.Name, now)

	// 向新客戶端發送完整的在線名單
	if syncEvent, err := models.NewEvent(models.EventPresenceSync, m.presence.Active(client.Topic, now)); err == nil {
		select {
		case client.SendChan <- syncEvent:
		default:
		}
	}

	// 通知其他訂閱者有參與者加入
	if joined {
		if event, err := models.NewEvent(models.EventPresenceJoin, models.PresenceEntry{
			ParticipantID: client.ParticipantID,
			Name:          client.Name,
			LastSeen:      now,
		}); err == nil {
			m.BroadcastEvent(client.Topic, event)
		}
	}
}

// removeClient 安全地移除客戶端連接並廣播離線事件
// 移除只會生效一次，done 與連接的關閉都由這裡統一負責
func (m *RealtimeManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	removed := false
	if clients, ok := m.clients[client.Topic]; ok {
		if clients[client] {
			delete(clients, client)
			removed = true
		}
		// 如果主題空了，刪除主題
		if len(clients) == 0 {
			delete(m.clients, client.Topic)
		}
	}
	m.clientsMux.Unlock()

	if !removed {
		return
	}

	close(client.done)
	if client.Conn != nil {
		client.Conn.Close()
	}

	m.presence.Untrack(client.Topic, client.ParticipantID)

	if event, err := models.NewEvent(models.EventPresenceLeave, models.PresenceEntry{
		ParticipantID: client.ParticipantID,
		Name:          client.Name,
	}); err == nil {
		m.BroadcastEvent(client.Topic, event)
	}
}

// TopicClients 獲取指定主題的在線連接數量
func (m *RealtimeManager) TopicClients(topic string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[topic])
}
