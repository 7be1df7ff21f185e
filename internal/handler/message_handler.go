package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"foodshare/internal/auth"
	"foodshare/internal/errors"
	"foodshare/internal/service"
)

// MessageHandler handles messaging endpoints.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest represents a send-message request.
type SendMessageRequest struct {
	Contents string `json:"contents" validate:"required,max=1000"`
}

// ChatResponse represents a two-party chat page: the full history in
// chronological order.
type ChatResponse struct {
	PartnerID uint        `json:"partner_id"`
	Messages  interface{} `json:"messages"`
}

// Conversations godoc
// @Summary List the caller's conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.Conversation
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /messages [get]
func (h *MessageHandler) Conversations(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	conversations, err := h.messageService.Conversations(c.Request().Context(), identity.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, conversations)
}

// Chat godoc
// @Summary Get the full chat with another user
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Partner user ID"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /messages/{id} [get]
func (h *MessageHandler) Chat(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user id",
			Code:  "INVALID_ID",
		})
	}

	history, err := h.messageService.History(c.Request().Context(), identity.UserID, uint(partnerID))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, ChatResponse{
		PartnerID: uint(partnerID),
		Messages:  history,
	})
}

// Send godoc
// @Summary Send a message to another user
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Receiver user ID"
// @Param request body SendMessageRequest true "Message contents"
// @Success 201 {object} model.Message
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /messages/{id} [post]
func (h *MessageHandler) Send(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	receiverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user id",
			Code:  "INVALID_ID",
		})
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	message, err := h.messageService.Send(c.Request().Context(), identity.UserID, uint(receiverID), req.Contents)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, message)
}
