// Package api 定義估點會話的 HTTP 路由。
//
// 路由分為公開端點（註冊、登入、健康檢查）和需要認證的
// 會話端點：回合操作、聊天消息與表情、WebSocket 升級、在線名單。
// 實際的請求處理邏輯在 handlers 子包裡。
package api
