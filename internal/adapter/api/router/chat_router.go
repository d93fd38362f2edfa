package router

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/handler"
	"valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/domain/entity"
)

// SetupChatRouter sets up all consultation chat routes (excluding WebSocket)
func SetupChatRouter(
	e *echo.Echo,
	chatHandler *handler.ChatHandler,
	lifecycleHandler *handler.LifecycleHandler,
	supportHandler *handler.SupportHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate) // All chat endpoints require authentication

	// Roster and chat access
	chatGroup.GET("", chatHandler.GetRoster)   // GET /v1/chats - Paged roster for the caller
	chatGroup.GET("/:id", chatHandler.GetChat) // GET /v1/chats/:id - Single chat with derived status

	// Message log
	chatGroup.GET("/:id/messages", chatHandler.GetMessages) // GET /v1/chats/:id/messages
	chatGroup.POST("/:id/messages", chatHandler.SendText)   // POST /v1/chats/:id/messages - Text message
	chatGroup.POST("/:id/files", chatHandler.SendFiles)     // POST /v1/chats/:id/files - Jathak uploads
	chatGroup.POST("/:id/voice", chatHandler.SendVoice)     // POST /v1/chats/:id/voice - Voice recording
	chatGroup.GET("/:id/files", chatHandler.ListFiles)      // GET /v1/chats/:id/files
	chatGroup.PUT("/:id/read", chatHandler.MarkRead)        // PUT /v1/chats/:id/read

	// Pending offline notifications for the caller
	notificationGroup := e.Group("/v1/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)
	notificationGroup.GET("", chatHandler.GetNotifications) // GET /v1/notifications

	// Feedback is submitted by the client participant
	chatGroup.POST("/:id/feedback", lifecycleHandler.SubmitFeedback) // POST /v1/chats/:id/feedback

	// Operational endpoints for the support desk and admins
	staffGroup := chatGroup.Group("", middleware.RequireAnyRole(entity.RoleSupport, entity.RoleAdmin))
	staffGroup.POST("/:id/support-message", supportHandler.SendMessage)       // POST /v1/chats/:id/support-message
	staffGroup.PUT("/:id/assign-astrologer", lifecycleHandler.AssignAstrologer) // PUT /v1/chats/:id/assign-astrologer
	staffGroup.PUT("/:id/assign-support", lifecycleHandler.AssignSupportUser) // PUT /v1/chats/:id/assign-support
	staffGroup.PUT("/:id/extend", lifecycleHandler.ExtendExpiry)              // PUT /v1/chats/:id/extend
	staffGroup.PUT("/:id/complete", lifecycleHandler.MarkCompleted)           // PUT /v1/chats/:id/complete

	adminGroup := chatGroup.Group("", middleware.RequireAnyRole(entity.RoleAdmin))
	adminGroup.PUT("/:id/assign-admin", lifecycleHandler.AssignAdmin)                     // PUT /v1/chats/:id/assign-admin
	adminGroup.PUT("/:id/feedback/visibility", lifecycleHandler.ToggleFeedbackVisibility) // PUT /v1/chats/:id/feedback/visibility
}
