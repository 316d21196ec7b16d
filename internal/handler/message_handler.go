package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webmail/internal/service"
)

// MessageHandler handles mailbox endpoints.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessageRequest represents a composed message.
type SendMessageRequest struct {
	ReceiverEmail string `json:"receiver_email" validate:"required,email"`
	Subject       string `json:"subject" validate:"required,max=255"`
	MessageDetail string `json:"message_detail"`
	CategoryID    *uint  `json:"category_id,omitempty"`
}

// Inbox godoc
// @Summary Received messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.MessageWithSenderInfo
// @Failure 401 {object} errors.ErrorResponse
// @Router /messages/inbox [get]
func (h *MessageHandler) Inbox(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	messages, err := h.messageService.Inbox(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// InboxByCategory godoc
// @Summary Received messages in a category
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {array} model.MessageWithSenderInfo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /messages/category/{id} [get]
func (h *MessageHandler) InboxByCategory(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	messages, err := h.messageService.InboxByCategory(c.Request().Context(), p, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// Sendbox godoc
// @Summary Sent messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.MessageWithReceiverInfo
// @Failure 401 {object} errors.ErrorResponse
// @Router /messages/sendbox [get]
func (h *MessageHandler) Sendbox(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	messages, err := h.messageService.Sendbox(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// GetMessage godoc
// @Summary Read a message
// @Description Opening a message as its receiver marks it read.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} model.Message
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/{id} [get]
func (h *MessageHandler) GetMessage(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	message, err := h.messageService.GetMessage(c.Request().Context(), p, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, message)
}

// SendMessage godoc
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} model.Message
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.messageService.SendMessage(c.Request().Context(), p, service.SendMessageInput{
		ReceiverEmail: req.ReceiverEmail,
		Subject:       req.Subject,
		MessageDetail: req.MessageDetail,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, message)
}
