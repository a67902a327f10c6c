package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poker_web/internal/api/handlers"
	"poker_web/internal/middleware"
	"poker_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	sessionHandler := handlers.NewSessionHandler(services.Session, services.User)
	chatHandler := handlers.NewChatHandler(services.Chat)
	wsHandler := handlers.NewWebSocketHandler(services.Realtime, services.Session)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 匿名房間鍵
		authorized.POST("/rooms", sessionHandler.CreateRoom)

		// 估點會話相關
		authorized.POST("/sessions", sessionHandler.GetOrCreateSession)
		sessions := authorized.Group("/sessions/:key")
		{
			sessions.GET("", sessionHandler.GetSession)

			// 會話操作
			sessions.PUT("/selection", sessionHandler.UpdateSelection) // 選牌
			sessions.PUT("/lock", sessionHandler.ToggleLock)           // 鎖定/解鎖
			sessions.POST("/play", sessionHandler.PlayHand)            // 開牌
			sessions.POST("/next-round", sessionHandler.NextRound)     // 下一回合
			sessions.PUT("/ticket", sessionHandler.UpdateTicketNumber) // 票號

			// 歷史回合
			sessions.GET("/rounds", sessionHandler.ListRounds)
			sessions.GET("/history", sessionHandler.NavigateRounds)
			sessions.DELETE("/rounds", sessionHandler.DeleteAllRounds)

			// 回合聊天
			sessions.GET("/rounds/:round/messages", chatHandler.GetMessages)
			sessions.POST("/messages", chatHandler.SendMessage)
			sessions.PUT("/messages/:id/reaction", chatHandler.SetReaction)
			sessions.DELETE("/messages/:id/reaction", chatHandler.RemoveReaction)

			// 在線狀態與實時頻道
			sessions.GET("/presence", wsHandler.GetPresence)
			sessions.GET("/ws", wsHandler.HandleSessionWebSocket)
			sessions.GET("/rounds/:round/chat/ws", wsHandler.HandleChatWebSocket)
		}
	}
}
