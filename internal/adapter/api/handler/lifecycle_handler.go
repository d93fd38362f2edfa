package handler

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/response"
)

type LifecycleHandler struct {
	lifecycleUseCase *usecase.LifecycleUseCase
}

func NewLifecycleHandler(lifecycleUseCase *usecase.LifecycleUseCase) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleUseCase: lifecycleUseCase,
	}
}

type assignRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type extendRequest struct {
	Hours int `json:"hours" validate:"required,min=1"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h *LifecycleHandler) AssignAstrologer(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.lifecycleUseCase.AssignAstrologer(c.Request().Context(), c.Param("id"), req.UserID, middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) AssignSupportUser(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.lifecycleUseCase.AssignSupportUser(c.Request().Context(), c.Param("id"), req.UserID, middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) AssignAdmin(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.lifecycleUseCase.AssignAdmin(c.Request().Context(), c.Param("id"), req.UserID, middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) ExtendExpiry(c echo.Context) error {
	var req extendRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.lifecycleUseCase.ExtendExpiry(c.Request().Context(), c.Param("id"), req.Hours, middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) MarkCompleted(c echo.Context) error {
	chat, err := h.lifecycleUseCase.MarkCompleted(c.Request().Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) SubmitFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.lifecycleUseCase.SubmitFeedback(c.Request().Context(), c.Param("id"), middleware.Identity(c), req.Rating, req.Comment)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *LifecycleHandler) ToggleFeedbackVisibility(c echo.Context) error {
	chat, err := h.lifecycleUseCase.ToggleFeedbackVisibility(c.Request().Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}
