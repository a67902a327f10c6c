package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"poker_web/internal/api"
	"poker_web/internal/models"
	"poker_web/internal/repository"
	"poker_web/internal/service"
	"poker_web/internal/storage"
	"poker_web/internal/utils"
	"poker_web/pkg/config"
)

func main() {
	// 載入應用程式配置
	// 從配置文件中讀取設置，如數據庫連接信息和服務器地址等
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// JWT 簽名密鑰從配置載入
	utils.SetJWTSecret(cfg.JWT.Secret)

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構
	// 在線狀態是純臨時資料，不遷移任何對應的表
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Round{},
		&models.ChatMessage{},
		&models.Reaction{},
	); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories
	repos := repository.NewRepositories(db)

	// 初始化 services
	services := service.NewServices(repos)

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	// 使用配置中指定的地址啟動 HTTP 服務器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
