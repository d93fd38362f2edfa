package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/response"
)

type AdminChatHandler struct {
	adminChatUseCase *usecase.AdminChatUseCase
}

func NewAdminChatHandler(adminChatUseCase *usecase.AdminChatUseCase) *AdminChatHandler {
	return &AdminChatHandler{
		adminChatUseCase: adminChatUseCase,
	}
}

type openAdminChatRequest struct {
	MainChatID string `json:"main_chat_id" validate:"required"`
	AdminID    string `json:"admin_id"`
}

func (h *AdminChatHandler) Open(c echo.Context) error {
	var req openAdminChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	channel, err := h.adminChatUseCase.Open(c.Request().Context(), req.MainChatID, middleware.Identity(c), req.AdminID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, channel)
}

func (h *AdminChatHandler) Get(c echo.Context) error {
	channel, err := h.adminChatUseCase.Get(c.Request().Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, channel)
}

func (h *AdminChatHandler) List(c echo.Context) error {
	channels, err := h.adminChatUseCase.ListForClient(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, channels)
}

func (h *AdminChatHandler) SendText(c echo.Context) error {
	var req sendTextRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.adminChatUseCase.SendText(c.Request().Context(), c.Param("id"), middleware.Identity(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *AdminChatHandler) GetMessages(c echo.Context) error {
	limit, offset := pageQuery(c, 50)

	messages, err := h.adminChatUseCase.GetMessages(c.Request().Context(), c.Param("id"), middleware.Identity(c), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *AdminChatHandler) MarkRead(c echo.Context) error {
	if err := h.adminChatUseCase.MarkRead(c.Request().Context(), c.Param("id"), middleware.Identity(c)); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *AdminChatHandler) Resolve(c echo.Context) error {
	channel, err := h.adminChatUseCase.Resolve(c.Request().Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, channel)
}
