package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/observability"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// NotificationPublisher is the typed publish interface the dispatcher exposes
// to the other components. Side effects flowing through it may fail without
// failing the primary write.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// MentionInput describes a resolved mention to persist.
type MentionInput struct {
	MentionableType   string
	MentionableID     uint
	MentionedUserID   uint
	MentionedByUserID uint
	Link              string
}

// MentionService extracts @-handles from text and records resolved mentions.
type MentionService interface {
	ParseMentions(ctx context.Context, text string) ([]models.User, error)
	CreateMention(ctx context.Context, input MentionInput) (models.Mention, error)
	ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]dto.MentionResponse, error)
}

type mentionService struct {
	users         repository.UserRepository
	mentions      repository.MentionRepository
	notifications NotificationPublisher
	logger        zerolog.Logger
	pattern       *regexp.Regexp
}

// NewMentionService constructs a mention service.
func NewMentionService(users repository.UserRepository, mentions repository.MentionRepository, notifications NotificationPublisher, logger zerolog.Logger) MentionService {
	return &mentionService{
		users:         users,
		mentions:      mentions,
		notifications: notifications,
		logger:        logger.With().Str("component", "mention_service").Logger(),
		pattern:       regexp.MustCompile(`@([a-zA-Z0-9_][a-zA-Z0-9_.\-]*)`),
	}
}

// ParseMentions extracts candidate handles and resolves them against the user
// directory with a single batched lookup. Text without any @-handle issues no
// query at all. Handles that match no user are silently dropped.
func (s *mentionService) ParseMentions(ctx context.Context, text string) ([]models.User, error) {
	handles := s.extractHandles(text)
	if len(handles) == 0 {
		return nil, nil
	}

	users, err := s.users.FindByUsernames(ctx, handles)
	if err != nil {
		return nil, err
	}

	observability.MentionsResolvedTotal().Add(float64(len(users)))

	return users, nil
}

// CreateMention persists the mention row and hands the event to the
// dispatcher. Self-mention suppression is the caller's responsibility.
// Notification failure is logged and does not undo the mention.
func (s *mentionService) CreateMention(ctx context.Context, input MentionInput) (models.Mention, error) {
	mention := models.Mention{
		MentionableType:   input.MentionableType,
		MentionableID:     input.MentionableID,
		MentionedUserID:   input.MentionedUserID,
		MentionedByUserID: input.MentionedByUserID,
	}

	if err := s.mentions.Create(ctx, &mention); err != nil {
		return models.Mention{}, err
	}

	if s.notifications != nil {
		payload := dto.NotificationCreateRequest{
			UserID:  input.MentionedUserID,
			Type:    models.NotificationTypeMention,
			Message: fmt.Sprintf("You were mentioned in a %s", input.MentionableType),
			Link:    input.Link,
		}
		if _, err := s.notifications.Publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).
				Uint("mentioned_user_id", input.MentionedUserID).
				Msg("failed to publish mention notification")
		}
	}

	return mention, nil
}

func (s *mentionService) ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]dto.MentionResponse, error) {
	mentions, err := s.mentions.ListForSubject(ctx, mentionableType, mentionableID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MentionResponse, 0, len(mentions))
	for _, mention := range mentions {
		out = append(out, dto.NewMentionResponse(mention))
	}
	return out, nil
}

func (s *mentionService) extractHandles(text string) []string {
	matches := s.pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	handles := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		handle := strings.TrimSpace(match[1])
		if handle == "" {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}

	return handles
}
