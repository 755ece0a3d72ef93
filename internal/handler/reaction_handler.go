package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/service"
	"github.com/wrenhq/wren-social-api/internal/utils"
)

// ReactionHandler provides HTTP endpoints for reactions and mention lookups on
// content subjects.
type ReactionHandler struct {
	reactions service.ReactionService
	mentions  service.MentionService
	logger    zerolog.Logger
}

// NewReactionHandler constructs a handler instance.
func NewReactionHandler(reactions service.ReactionService, mentions service.MentionService, logger zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		reactions: reactions,
		mentions:  mentions,
		logger:    logger.With().Str("component", "reaction_handler").Logger(),
	}
}

// Register binds the reaction routes.
func (h *ReactionHandler) Register(router fiber.Router) {
	router.Post("/", h.add)
	router.Delete("/", h.remove)
	router.Get("/summary", h.summary)
	router.Get("/me", h.userReaction)
	router.Get("/mentions", h.listMentions)
}

func (h *ReactionHandler) add(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ReactionAddRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	reaction, err := h.reactions.Add(withRequestContext(c), userID, payload)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "reaction recorded", reaction)
}

func (h *ReactionHandler) remove(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ReactionRemoveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.reactions.Remove(withRequestContext(c), userID, payload); err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "reaction removed", nil)
}

func (h *ReactionHandler) summary(c *fiber.Ctx) error {
	subjectType, subjectID, err := subjectFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.reactions.Summary(withRequestContext(c), subjectType, subjectID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "reaction summary", summary)
}

func (h *ReactionHandler) userReaction(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	subjectType, subjectID, err := subjectFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reaction, err := h.reactions.UserReaction(withRequestContext(c), subjectType, subjectID, userID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "user reaction", reaction)
}

func (h *ReactionHandler) listMentions(c *fiber.Ctx) error {
	subjectType := strings.TrimSpace(c.Query("subject_type"))
	subjectID, err := parseQueryUint(c, "subject_id")
	if err != nil || subjectType == "" || subjectID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "subject_type and subject_id required")
	}

	mentions, err := h.mentions.ListForSubject(withRequestContext(c), subjectType, subjectID)
	if err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccess(c, "mentions", mentions)
}

func subjectFromQuery(c *fiber.Ctx) (string, uint, error) {
	subjectType := strings.TrimSpace(c.Query("subject_type"))
	subjectID, err := parseQueryUint(c, "subject_id")
	if err != nil || subjectType == "" || subjectID == 0 {
		return "", 0, fiber.NewError(fiber.StatusBadRequest, "subject_type and subject_id required")
	}
	return subjectType, subjectID, nil
}
