package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/observability"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// MessageService persists, mutates and queries conversation messages, and
// drives the mention/notification/activity fan-out on send.
type MessageService interface {
	Send(ctx context.Context, conversationID, senderID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error)
	Edit(ctx context.Context, messageID, userID uint, payload dto.MessageEditRequest) (dto.MessageResponse, error)
	Delete(ctx context.Context, messageID, userID uint) error
	List(ctx context.Context, conversationID, userID uint, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error)
	Search(ctx context.Context, userID uint, query dto.MessageSearchQuery) ([]dto.MessageResponse, error)
}

type messageService struct {
	repo          repository.MessageRepository
	conversations repository.ConversationRepository
	mentions      MentionService
	notifications NotificationPublisher
	activities    ActivityRecorder
	lastCache     *LastMessageCache
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
}

// NewMessageService constructs a message service.
func NewMessageService(repo repository.MessageRepository, conversations repository.ConversationRepository, mentions MentionService, notifications NotificationPublisher, activities ActivityRecorder, lastCache *LastMessageCache, validate *validator.Validate, logger zerolog.Logger) MessageService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &messageService{
		repo:          repo,
		conversations: conversations,
		mentions:      mentions,
		notifications: notifications,
		activities:    activities,
		lastCache:     lastCache,
		validator:     validate,
		logger:        logger.With().Str("component", "message_service").Logger(),
		tracer:        otel.Tracer("github.com/wrenhq/wren-social-api/internal/service/message"),
		sanitizer:     sanitizer,
	}
}

// Send persists the message and advances the conversation pointer inside one
// transaction, then runs the best-effort tail: mention resolution,
// notifications and the activity entry. A failure anywhere in the tail is
// logged and never rolls back the message.
func (s *messageService) Send(ctx context.Context, conversationID, senderID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	messageType := payload.Type
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" && !(messageType == models.MessageTypeFile && payload.AttachmentURL != "") {
		return dto.MessageResponse{}, &ValidationError{Reason: "Message content is required"}
	}

	if _, err := s.conversations.FindParticipant(ctx, conversationID, senderID); err != nil {
		return dto.MessageResponse{}, translateNotFound(err)
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("message.conversation_id", int64(conversationID)),
		attribute.Int64("message.sender_id", int64(senderID)),
		attribute.String("message.type", messageType),
	}
	spanCtx, span := s.tracer.Start(ctx, "messages.send", trace.WithAttributes(attrs...))
	defer span.End()

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        clean,
		Type:           messageType,
		AttachmentURL:  payload.AttachmentURL,
	}

	if err := s.repo.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(message)
	s.lastCache.Set(spanCtx, response)

	observability.MessagesSentTotal().WithLabelValues(messageType).Inc()

	s.fanOut(spanCtx, message)

	return response, nil
}

// Edit replaces the content of a message. Only the original sender may edit;
// a deleted or missing message is a not-found.
func (s *messageService) Edit(ctx context.Context, messageID, userID uint, payload dto.MessageEditRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.MessageResponse{}, &ValidationError{Reason: "Message content is required"}
	}

	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return dto.MessageResponse{}, translateNotFound(err)
	}
	if message.IsDeleted {
		return dto.MessageResponse{}, ErrNotFound
	}
	if message.SenderID != userID {
		return dto.MessageResponse{}, ErrForbidden
	}

	message.Content = clean
	message.IsEdited = true

	if err := s.repo.Update(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	// The cached last message may be this one; drop it so list rendering
	// re-reads the edited content.
	s.lastCache.Invalidate(ctx, message.ConversationID)

	return dto.NewMessageResponse(message), nil
}

// Delete tombstones the message. Deleting an already-deleted message is a
// no-op, so retries are always safe.
func (s *messageService) Delete(ctx context.Context, messageID, userID uint) error {
	message, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return translateNotFound(err)
	}
	if message.SenderID != userID {
		return ErrForbidden
	}
	if message.IsDeleted {
		return nil
	}

	if err := s.repo.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	// A stale cache entry would keep rendering the tombstoned content in
	// conversation summaries until its TTL ran out.
	s.lastCache.Invalidate(ctx, message.ConversationID)

	return nil
}

// List returns conversation history in chronological ascending order, even
// though retrieval grabs the most recent window descending. The
// before_message_id cursor wins over offset when both are supplied.
func (s *messageService) List(ctx context.Context, conversationID, userID uint, query dto.MessageHistoryQuery) ([]dto.MessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	if _, err := s.conversations.FindParticipant(ctx, conversationID, userID); err != nil {
		return nil, translateNotFound(err)
	}

	messages, err := s.repo.ListByConversation(ctx, conversationID, repository.MessagePage{
		Limit:    query.Limit,
		Offset:   query.Offset,
		BeforeID: query.BeforeMessageID,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}

// Search scans messages across the caller's conversations. A conversation_id
// filter narrows the scope but can never widen it past the participant set.
func (s *messageService) Search(ctx context.Context, userID uint, query dto.MessageSearchQuery) ([]dto.MessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	messages, err := s.repo.Search(ctx, userID, query.Query, query.ConversationID, query.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}

// fanOut is the non-transactional side-effect tail of Send.
func (s *messageService) fanOut(ctx context.Context, message models.Message) {
	link := fmt.Sprintf("/conversations/%d#message-%d", message.ConversationID, message.ID)

	if s.mentions != nil && message.Content != "" {
		users, err := s.mentions.ParseMentions(ctx, message.Content)
		if err != nil {
			s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to resolve mentions")
		}
		for _, user := range users {
			// Self-mentions never notify.
			if user.ID == message.SenderID {
				continue
			}
			_, err := s.mentions.CreateMention(ctx, MentionInput{
				MentionableType:   "message",
				MentionableID:     message.ID,
				MentionedUserID:   user.ID,
				MentionedByUserID: message.SenderID,
				Link:              link,
			})
			if err != nil {
				s.logger.Warn().Err(err).Uint("mentioned_user_id", user.ID).Msg("failed to record mention")
			}
		}
	}

	if s.activities != nil {
		err := s.activities.Record(ctx, message.SenderID, dto.ActivityCreateRequest{
			ActivityType: models.ActivityTypeMessageSent,
			TargetType:   "conversation",
			TargetID:     message.ConversationID,
			Metadata:     map[string]interface{}{"message_id": message.ID},
		})
		if err != nil {
			s.logger.Warn().Err(err).Uint("message_id", message.ID).Msg("failed to record message activity")
		}
	}
}
