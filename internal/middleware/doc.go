// Package middleware 提供會話端點的請求中間件。
//
// 目前只有 JWT 認證：除了 Authorization 標頭外也接受
// token 查詢參數，因為瀏覽器的 WebSocket 握手帶不了自定義標頭。
// 驗證通過後把 userID 和 userName 放進 gin 上下文供處理器使用。
package middleware
