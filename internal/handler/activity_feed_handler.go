package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/service"
	"github.com/wrenhq/wren-social-api/internal/utils"
)

// ActivityFeedHandler serves the combined activity feed.
type ActivityFeedHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityFeedHandler constructs the handler instance.
func NewActivityFeedHandler(service service.ActivityService, logger zerolog.Logger) *ActivityFeedHandler {
	return &ActivityFeedHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_feed_handler").Logger(),
	}
}

// Register wires the activity feed routes. Record is called by the content
// modules that own posts, comments and events; the feed is read by everyone.
func (h *ActivityFeedHandler) Register(router fiber.Router) {
	router.Post("/", h.record)
	router.Get("/feed", h.feed)
}

func (h *ActivityFeedHandler) record(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Record(withRequestContext(c), userID, payload); err != nil {
		return utils.SendError(c, errorStatus(err), err.Error())
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity recorded", nil)
}

func (h *ActivityFeedHandler) feed(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	req := dto.ActivityFeedRequest{
		Limit:  limit,
		Offset: offset,
	}
	if types := c.Query("activity_types"); types != "" {
		req.Types = splitAndTrim(types)
	}

	result, err := h.service.Feed(withRequestContext(c), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch activity feed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch activities")
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}

	return utils.SendSuccess(c, "activity feed retrieved", result)
}
