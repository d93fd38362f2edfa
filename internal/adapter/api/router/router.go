package router

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/handler"
	"valluvarvaasal/internal/adapter/api/middleware"
)

type Handlers struct {
	Chat      *handler.ChatHandler
	Lifecycle *handler.LifecycleHandler
	Support   *handler.SupportHandler
	AdminChat *handler.AdminChatHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupHealthRouter(e, h.Health)
	SetupChatRouter(e, h.Chat, h.Lifecycle, h.Support, authMiddleware)
	SetupAdminChatRouter(e, h.AdminChat, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
}
