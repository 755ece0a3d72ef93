package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/observability"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// ActivityRecorder is the append-only sink the write paths feed. Record is
// fire-and-forget from the caller's perspective: failures are the caller's to
// log, never to propagate into the primary write.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, payload dto.ActivityCreateRequest) error
}

// ActivityService records cross-content activity and serves the combined feed.
type ActivityService interface {
	ActivityRecorder
	Feed(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error)
}

type activityService struct {
	repo      repository.ActivityRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewActivityService builds the activity service.
func NewActivityService(repo repository.ActivityRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &activityService{
		repo:      repo,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

// Record validates the activity tag at the boundary and appends the entry.
// Unknown tags are rejected before any side effect.
func (s *activityService) Record(ctx context.Context, userID uint, payload dto.ActivityCreateRequest) error {
	if !models.ValidActivityType(payload.ActivityType) {
		return &ValidationError{Reason: fmt.Sprintf("Invalid activity type: %s", payload.ActivityType)}
	}

	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	activity := models.Activity{
		UserID:     userID,
		Type:       payload.ActivityType,
		TargetType: payload.TargetType,
		TargetID:   payload.TargetID,
	}
	if len(payload.Metadata) > 0 {
		activity.Metadata = datatypes.JSONMap(payload.Metadata)
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		return err
	}

	observability.ActivitiesRecordedTotal().WithLabelValues(payload.ActivityType).Inc()

	return nil
}

// Feed lists the newest activity entries, optionally filtered to a subset of
// activity types. Entries reference their target by (target_type, target_id)
// and carry a metadata snapshot, so a changed or removed target renders
// best-effort rather than erroring.
func (s *activityService) Feed(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error) {
	start := time.Now()
	defer func() {
		observability.FeedLatency().Observe(time.Since(start).Seconds())
	}()

	filter := repository.ActivityFeedFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	for _, activityType := range req.Types {
		trimmed := strings.ToLower(strings.TrimSpace(activityType))
		if trimmed != "" {
			filter.Types = append(filter.Types, trimmed)
		}
	}

	cacheKey := s.cacheKey(filter)
	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ActivityFeedResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				observability.FeedRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		}
	}

	entries, total, err := s.repo.ListFeed(ctx, filter)
	if err != nil {
		observability.FeedRequests().WithLabelValues("error").Inc()
		return dto.ActivityFeedResponse{}, err
	}

	items := make([]dto.ActivityFeedItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityFeedItem{
			ID:           entry.ID,
			UserID:       entry.UserID,
			ActivityType: entry.Type,
			TargetType:   entry.TargetType,
			TargetID:     entry.TargetID,
			Metadata:     map[string]interface{}(entry.Metadata),
			CreatedAt:    entry.CreatedAt,
		})
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	pagination := dto.PaginationMeta{
		Page:       filter.Offset/limit + 1,
		PageSize:   limit,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}

	response := dto.ActivityFeedResponse{Items: items, Pagination: pagination, CacheHit: false}

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write activity feed cache")
			}
		}
	}

	observability.FeedRequests().WithLabelValues("miss").Inc()

	return response, nil
}

func (s *activityService) cacheKey(filter repository.ActivityFeedFilter) string {
	if s.cache == nil {
		return ""
	}

	types := append([]string(nil), filter.Types...)
	sort.Strings(types)

	return fmt.Sprintf("activities:feed:v1:%s:%d:%d", strings.Join(types, "|"), filter.Limit, filter.Offset)
}
