package router

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the realtime endpoint. Auth middleware is
// skipped here: browsers cannot set headers on socket upgrades, so the
// handler verifies the token query parameter itself.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.Handle)
}
