package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/service"
	"github.com/wrenhq/wren-social-api/internal/utils"
)

// ConversationHandler provides HTTP endpoints for conversations, membership
// and per-participant read state.
type ConversationHandler struct {
	conversations service.ConversationService
	readState     service.ReadStateService
	logger        zerolog.Logger
}

// NewConversationHandler constructs a handler instance.
func NewConversationHandler(conversations service.ConversationService, readState service.ReadStateService, logger zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		readState:     readState,
		logger:        logger.With().Str("component", "conversation_handler").Logger(),
	}
}

// Register binds the conversation routes.
func (h *ConversationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.createGroup)
	router.Post("/direct", h.getOrCreateDirect)
	router.Get("/:id", h.get)
	router.Post("/:id/participants", h.addParticipants)
	router.Delete("/:id/participants/me", h.leave)
	router.Post("/:id/read", h.markRead)
	router.Get("/:id/unread-count", h.unreadCount)
}

func (h *ConversationHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	summaries, err := h.conversations.ListForUser(withRequestContext(c), userID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "conversations", summaries)
}

func (h *ConversationHandler) getOrCreateDirect(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.DirectConversationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	conversation, err := h.conversations.GetOrCreateDirect(withRequestContext(c), userID, payload.PeerID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "conversation", conversation)
}

func (h *ConversationHandler) createGroup(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.GroupConversationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	conversation, err := h.conversations.CreateGroup(withRequestContext(c), userID, payload)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", conversation)
}

func (h *ConversationHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	conversation, err := h.conversations.GetByID(withRequestContext(c), uint(id), userID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "conversation", conversation)
}

func (h *ConversationHandler) addParticipants(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AddParticipantsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.conversations.AddParticipants(withRequestContext(c), uint(id), userID, payload); err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "participants added", nil)
}

func (h *ConversationHandler) leave(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.conversations.Leave(withRequestContext(c), uint(id), userID); err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "conversation left", nil)
}

func (h *ConversationHandler) markRead(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MarkReadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	participant, err := h.readState.MarkRead(withRequestContext(c), uint(id), userID, payload)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "read state updated", participant)
}

func (h *ConversationHandler) unreadCount(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParamValue(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	count, err := h.readState.UnreadCount(withRequestContext(c), uint(id), userID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "unread count", fiber.Map{"unread_count": count})
}
