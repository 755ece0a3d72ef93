package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/observability"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// ReactionService manages reaction upserts and aggregated counts on reactable
// content identified by (subject_type, subject_id).
type ReactionService interface {
	Add(ctx context.Context, userID uint, payload dto.ReactionAddRequest) (dto.ReactionResponse, error)
	Remove(ctx context.Context, userID uint, payload dto.ReactionRemoveRequest) error
	Summary(ctx context.Context, subjectType string, subjectID uint) (dto.ReactionSummaryResponse, error)
	UserReaction(ctx context.Context, subjectType string, subjectID, userID uint) (*dto.ReactionResponse, error)
}

type reactionService struct {
	repo          repository.ReactionRepository
	notifications NotificationPublisher
	activities    ActivityRecorder
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewReactionService constructs a reaction service.
func NewReactionService(repo repository.ReactionRepository, notifications NotificationPublisher, activities ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ReactionService {
	return &reactionService{
		repo:          repo,
		notifications: notifications,
		activities:    activities,
		validator:     validate,
		logger:        logger.With().Str("component", "reaction_service").Logger(),
		tracer:        otel.Tracer("github.com/wrenhq/wren-social-api/internal/service/reaction"),
	}
}

// Add upserts the caller's reaction. The reaction type is checked against the
// fixed enum before anything touches the database; an unknown type fails fast
// and issues no query. A second call from the same user on the same subject
// overwrites the stored type instead of creating another row.
func (s *reactionService) Add(ctx context.Context, userID uint, payload dto.ReactionAddRequest) (dto.ReactionResponse, error) {
	if !models.ValidReactionType(payload.Type) {
		return dto.ReactionResponse{}, &ValidationError{Reason: fmt.Sprintf("Invalid reaction type: %s", payload.Type)}
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.ReactionResponse{}, err
	}

	attrs := []attribute.KeyValue{
		attribute.String("reaction.subject_type", payload.SubjectType),
		attribute.Int64("reaction.subject_id", int64(payload.SubjectID)),
		attribute.String("reaction.type", payload.Type),
	}
	spanCtx, span := s.tracer.Start(ctx, "reactions.add", trace.WithAttributes(attrs...))
	defer span.End()

	reaction := models.Reaction{
		SubjectType: payload.SubjectType,
		SubjectID:   payload.SubjectID,
		UserID:      userID,
		Type:        payload.Type,
	}

	// The upsert itself reports whether a new row was inserted, so the
	// first-reaction decision cannot race: two concurrent calls from the same
	// user resolve to exactly one insert.
	firstTime, err := s.repo.Upsert(spanCtx, &reaction)
	if err != nil {
		span.RecordError(err)
		return dto.ReactionResponse{}, err
	}

	observability.ReactionsRecordedTotal().WithLabelValues(payload.Type).Inc()

	// Non-transactional tail: a notification or feed failure must never undo
	// the reaction write. Changing an existing reaction's type does not
	// re-notify the owner; only the first reaction row does.
	if firstTime {
		s.notifyOwner(spanCtx, userID, payload)
	}
	s.recordActivity(spanCtx, userID, payload)

	return dto.NewReactionResponse(reaction), nil
}

// Remove deletes the caller's reaction if present; a missing reaction is a
// no-op, which keeps retries and double-clicks safe.
func (s *reactionService) Remove(ctx context.Context, userID uint, payload dto.ReactionRemoveRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	return s.repo.Delete(ctx, payload.SubjectType, payload.SubjectID, userID)
}

func (s *reactionService) Summary(ctx context.Context, subjectType string, subjectID uint) (dto.ReactionSummaryResponse, error) {
	counts, err := s.repo.Summary(ctx, subjectType, subjectID)
	if err != nil {
		return dto.ReactionSummaryResponse{}, err
	}

	return dto.ReactionSummaryResponse{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Counts:      counts,
	}, nil
}

// UserReaction returns nil, not an error, when the user has no reaction on
// the subject.
func (s *reactionService) UserReaction(ctx context.Context, subjectType string, subjectID, userID uint) (*dto.ReactionResponse, error) {
	reaction, err := s.repo.FindByUser(ctx, subjectType, subjectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	response := dto.NewReactionResponse(reaction)
	return &response, nil
}

func (s *reactionService) notifyOwner(ctx context.Context, userID uint, payload dto.ReactionAddRequest) {
	if s.notifications == nil || payload.OwnerID == 0 || payload.OwnerID == userID {
		return
	}

	notification := dto.NotificationCreateRequest{
		UserID:  payload.OwnerID,
		Type:    models.NotificationTypeReaction,
		Message: fmt.Sprintf("Someone reacted to your %s", payload.SubjectType),
	}
	if _, err := s.notifications.Publish(ctx, notification); err != nil {
		s.logger.Warn().Err(err).Uint("owner_id", payload.OwnerID).Msg("failed to publish reaction notification")
	}
}

func (s *reactionService) recordActivity(ctx context.Context, userID uint, payload dto.ReactionAddRequest) {
	if s.activities == nil {
		return
	}

	err := s.activities.Record(ctx, userID, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypeReactionAdded,
		TargetType:   payload.SubjectType,
		TargetID:     payload.SubjectID,
		Metadata:     map[string]interface{}{"reaction_type": payload.Type},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record reaction activity")
	}
}
