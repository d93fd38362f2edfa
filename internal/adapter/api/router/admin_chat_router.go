package router

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/handler"
	"valluvarvaasal/internal/adapter/api/middleware"
)

// SetupAdminChatRouter sets up the admin side-channel routes. Access
// control is per-channel and lives in the use case, so the group only
// requires authentication.
func SetupAdminChatRouter(e *echo.Echo, adminChatHandler *handler.AdminChatHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/admin-chats")
	group.Use(authMiddleware.Authenticate)

	group.POST("", adminChatHandler.Open)                 // POST /v1/admin-chats - Open (or return) the active channel
	group.GET("", adminChatHandler.List)                  // GET /v1/admin-chats - Caller's channels
	group.GET("/:id", adminChatHandler.Get)               // GET /v1/admin-chats/:id
	group.POST("/:id/messages", adminChatHandler.SendText) // POST /v1/admin-chats/:id/messages
	group.GET("/:id/messages", adminChatHandler.GetMessages) // GET /v1/admin-chats/:id/messages
	group.PUT("/:id/read", adminChatHandler.MarkRead)     // PUT /v1/admin-chats/:id/read
	group.PUT("/:id/resolve", adminChatHandler.Resolve)   // PUT /v1/admin-chats/:id/resolve
}
