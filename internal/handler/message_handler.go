package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/service"
	"github.com/wrenhq/wren-social-api/internal/utils"
)

// MessageHandler provides HTTP endpoints for conversation messages.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler constructs a handler instance.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register binds the message routes. Send and history hang off the owning
// conversation; edit, delete and search address messages directly.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Post("/conversations/:id/messages", h.send)
	router.Get("/conversations/:id/messages", h.list)
	router.Get("/messages/search", h.search)
	router.Patch("/messages/:id", h.edit)
	router.Delete("/messages/:id", h.remove)
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	conversationID, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.service.Send(withRequestContext(c), uint(conversationID), userID, payload)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	conversationID, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var query dto.MessageHistoryQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	messages, err := h.service.List(withRequestContext(c), uint(conversationID), userID, query)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "messages", messages)
}

func (h *MessageHandler) search(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var query dto.MessageSearchQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	messages, err := h.service.Search(withRequestContext(c), userID, query)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "search results", messages)
}

func (h *MessageHandler) edit(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	messageID, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MessageEditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.service.Edit(withRequestContext(c), uint(messageID), userID, payload)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "message updated", message)
}

func (h *MessageHandler) remove(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	messageID, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(withRequestContext(c), uint(messageID), userID); err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "message deleted", nil)
}
