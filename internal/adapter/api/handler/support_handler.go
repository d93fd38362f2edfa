package handler

import (
	"github.com/labstack/echo/v4"

	"valluvarvaasal/internal/adapter/api/middleware"
	"valluvarvaasal/internal/usecase"
	"valluvarvaasal/pkg/errors"
	"valluvarvaasal/pkg/response"
)

type SupportHandler struct {
	supportUseCase *usecase.SupportUseCase
}

func NewSupportHandler(supportUseCase *usecase.SupportUseCase) *SupportHandler {
	return &SupportHandler{
		supportUseCase: supportUseCase,
	}
}

type supportMessageRequest struct {
	Text      string `json:"text" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=as-astrologer to-astrologer"`
}

// SendMessage relays a support message into a chat, either attributed to
// the astrologer or directed at the astrologer.
func (h *SupportHandler) SendMessage(c echo.Context) error {
	var req supportMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	identity := middleware.Identity(c)
	chatID := c.Param("id")
	ctx := c.Request().Context()

	switch req.Direction {
	case "as-astrologer":
		message, err := h.supportUseCase.SendAsAstrologer(ctx, chatID, identity, req.Text)
		if err != nil {
			return response.Error(c, err)
		}
		return response.Created(c, message)
	case "to-astrologer":
		message, err := h.supportUseCase.SendToAstrologer(ctx, chatID, identity, req.Text)
		if err != nil {
			return response.Error(c, err)
		}
		return response.Created(c, message)
	default:
		return response.Error(c, errors.BadRequest("Unknown relay direction", nil))
	}
}
