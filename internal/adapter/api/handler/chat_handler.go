package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/errors"
	"valluvarvaasal/pkg/response"
	"valluvarvaasal/pkg/utils"
)

type ChatHandler struct {
	chatUseCase   *usecase.ChatUseCase
	rosterUseCase *usecase.RosterUseCase
	pageSize      int
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, rosterUseCase *usecase.RosterUseCase, pageSize int) *ChatHandler {
	return &ChatHandler{
		chatUseCase:   chatUseCase,
		rosterUseCase: rosterUseCase,
		pageSize:      pageSize,
	}
}

type sendTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// GetRoster returns one page of the caller's chat list. The WebSocket
// surface serves the live first page; this endpoint serves both the
// initial load and older-page fetches.
func (h *ChatHandler) GetRoster(c echo.Context) error {
	identity := middleware.Identity(c)
	params := utils.GetPageParams(c, h.pageSize)

	page, err := h.rosterUseCase.FetchNextPage(c.Request().Context(), identity.UID, params.Cursor, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paged(c, page.Chats, utils.EncodeCursor(page.Cursor), page.HasMore)
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	identity := middleware.Identity(c)

	chat, err := h.chatUseCase.GetChat(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	identity := middleware.Identity(c)
	limit, offset := pageQuery(c, 50)

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), c.Param("id"), identity, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) SendText(c echo.Context) error {
	var req sendTextRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity := middleware.Identity(c)

	message, err := h.chatUseCase.SendText(c.Request().Context(), c.Param("id"), identity, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) SendFiles(c echo.Context) error {
	identity := middleware.Identity(c)

	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, errors.BadRequest("Invalid multipart form", err))
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return response.Error(c, errors.BadRequest("No files supplied", nil))
	}

	var uploads []usecase.FileUpload
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			return response.Error(c, errors.BadRequest("Unreadable file in form", err))
		}
		defer src.Close()

		uploads = append(uploads, usecase.FileUpload{
			Content:      src,
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
		})
	}

	message, err := h.chatUseCase.SendFiles(c.Request().Context(), c.Param("id"), identity, uploads)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) SendVoice(c echo.Context) error {
	identity := middleware.Identity(c)

	header, err := c.FormFile("voice")
	if err != nil {
		return response.Error(c, errors.BadRequest("Voice recording is required", err))
	}

	duration, err := strconv.Atoi(c.FormValue("duration"))
	if err != nil {
		return response.Error(c, errors.BadRequest("Duration in seconds is required", err))
	}

	src, err := header.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Unreadable voice recording", err))
	}
	defer src.Close()

	message, err := h.chatUseCase.SendVoice(c.Request().Context(), c.Param("id"), identity, src, duration)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) ListFiles(c echo.Context) error {
	identity := middleware.Identity(c)

	files, err := h.chatUseCase.ListFiles(c.Request().Context(), c.Param("id"), identity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, files)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	identity := middleware.Identity(c)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), c.Param("id"), identity); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *ChatHandler) GetNotifications(c echo.Context) error {
	identity := middleware.Identity(c)
	limit, _ := pageQuery(c, 50)

	notifications, err := h.chatUseCase.ListNotifications(c.Request().Context(), identity, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notifications)
}

func pageQuery(c echo.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
