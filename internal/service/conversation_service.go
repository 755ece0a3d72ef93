package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// ConversationService manages direct and group conversations and their
// membership.
type ConversationService interface {
	GetOrCreateDirect(ctx context.Context, userID, peerID uint) (dto.ConversationResponse, error)
	CreateGroup(ctx context.Context, creatorID uint, payload dto.GroupConversationCreateRequest) (dto.ConversationResponse, error)
	GetByID(ctx context.Context, id, requestingUserID uint) (dto.ConversationResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.ConversationSummary, error)
	AddParticipants(ctx context.Context, conversationID, actorID uint, payload dto.AddParticipantsRequest) error
	Leave(ctx context.Context, conversationID, userID uint) error
}

type conversationService struct {
	repo      repository.ConversationRepository
	messages  repository.MessageRepository
	lastCache *LastMessageCache
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewConversationService constructs a conversation service.
func NewConversationService(repo repository.ConversationRepository, messages repository.MessageRepository, lastCache *LastMessageCache, validate *validator.Validate, logger zerolog.Logger) ConversationService {
	return &conversationService{
		repo:      repo,
		messages:  messages,
		lastCache: lastCache,
		validator: validate,
		logger:    logger.With().Str("component", "conversation_service").Logger(),
		tracer:    otel.Tracer("github.com/wrenhq/wren-social-api/internal/service/conversation"),
	}
}

// GetOrCreateDirect resolves the unique conversation for the unordered
// (userID, peerID) pair. Both argument orders yield the same conversation,
// and concurrent first-contact calls collapse onto one row inside the
// repository's atomic lookup-or-insert.
func (s *conversationService) GetOrCreateDirect(ctx context.Context, userID, peerID uint) (dto.ConversationResponse, error) {
	if peerID == 0 {
		return dto.ConversationResponse{}, &ValidationError{Reason: "peer_id is required"}
	}

	spanCtx, span := s.tracer.Start(ctx, "conversations.get_or_create_direct", trace.WithAttributes(
		attribute.Int64("conversation.user_id", int64(userID)),
		attribute.Int64("conversation.peer_id", int64(peerID)),
	))
	defer span.End()

	conversation, err := s.repo.GetOrCreateDirect(spanCtx, userID, peerID)
	if err != nil {
		span.RecordError(err)
		return dto.ConversationResponse{}, err
	}

	return s.withParticipants(spanCtx, conversation)
}

// CreateGroup creates a group conversation. Duplicate member ids collapse to
// one participant, the creator always joins as admin, and an empty member
// list is a valid creator-only group.
func (s *conversationService) CreateGroup(ctx context.Context, creatorID uint, payload dto.GroupConversationCreateRequest) (dto.ConversationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ConversationResponse{}, err
	}

	conversation := models.Conversation{
		Type:        models.ConversationTypeGroup,
		Name:        payload.Name,
		Description: payload.Description,
		CreatedBy:   creatorID,
	}

	participants := []models.Participant{
		{UserID: creatorID, Role: models.ParticipantRoleAdmin},
	}
	seen := map[uint]struct{}{creatorID: {}}
	for _, memberID := range payload.MemberIDs {
		if memberID == 0 {
			continue
		}
		if _, dup := seen[memberID]; dup {
			continue
		}
		seen[memberID] = struct{}{}
		participants = append(participants, models.Participant{UserID: memberID, Role: models.ParticipantRoleMember})
	}

	if err := s.repo.CreateGroup(ctx, &conversation, participants); err != nil {
		return dto.ConversationResponse{}, err
	}

	s.logger.Info().Uint("conversation_id", conversation.ID).Uint("creator_id", creatorID).
		Int("members", len(participants)).Msg("group conversation created")

	return s.withParticipants(ctx, conversation)
}

// GetByID returns the conversation only when the requester participates in
// it; everything else is a not-found, never a panic or a generic failure.
func (s *conversationService) GetByID(ctx context.Context, id, requestingUserID uint) (dto.ConversationResponse, error) {
	conversation, err := s.repo.FindForUser(ctx, id, requestingUserID)
	if err != nil {
		return dto.ConversationResponse{}, translateNotFound(err)
	}

	return s.withParticipants(ctx, conversation)
}

// ListForUser builds the conversation list: each entry carries the caller's
// unread count and a denormalized last message for rendering. A user with no
// conversations gets an empty list.
func (s *conversationService) ListForUser(ctx context.Context, userID uint) ([]dto.ConversationSummary, error) {
	conversations, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		summary := dto.ConversationSummary{
			ConversationResponse: dto.NewConversationResponse(conversation),
		}

		participant, err := s.repo.FindParticipant(ctx, conversation.ID, userID)
		if err == nil {
			unread, countErr := s.messages.CountAfter(ctx, conversation.ID, participant.LastReadMessageID)
			if countErr != nil {
				return nil, countErr
			}
			summary.UnreadCount = unread
		}

		summary.LastMessage = s.lastMessage(ctx, conversation)
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// AddParticipants adds members to a group. Only group admins may mutate
// membership; re-adding an existing member is a no-op.
func (s *conversationService) AddParticipants(ctx context.Context, conversationID, actorID uint, payload dto.AddParticipantsRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	conversation, err := s.repo.FindForUser(ctx, conversationID, actorID)
	if err != nil {
		return translateNotFound(err)
	}
	if conversation.Type != models.ConversationTypeGroup {
		return ErrForbidden
	}

	actor, err := s.repo.FindParticipant(ctx, conversationID, actorID)
	if err != nil {
		return translateNotFound(err)
	}
	if actor.Role != models.ParticipantRoleAdmin {
		return ErrForbidden
	}

	seen := make(map[uint]struct{}, len(payload.MemberIDs))
	participants := make([]models.Participant, 0, len(payload.MemberIDs))
	for _, memberID := range payload.MemberIDs {
		if memberID == 0 {
			continue
		}
		if _, dup := seen[memberID]; dup {
			continue
		}
		seen[memberID] = struct{}{}
		participants = append(participants, models.Participant{
			ConversationID: conversationID,
			UserID:         memberID,
			Role:           models.ParticipantRoleMember,
		})
	}

	return s.repo.AddParticipants(ctx, participants)
}

// Leave removes the caller's participant row outright. The last admin of a
// group cannot leave; storage does not know this rule, so it lives here.
func (s *conversationService) Leave(ctx context.Context, conversationID, userID uint) error {
	conversation, err := s.repo.FindForUser(ctx, conversationID, userID)
	if err != nil {
		return translateNotFound(err)
	}

	participant, err := s.repo.FindParticipant(ctx, conversationID, userID)
	if err != nil {
		return translateNotFound(err)
	}

	if conversation.Type == models.ConversationTypeGroup && participant.Role == models.ParticipantRoleAdmin {
		admins, err := s.repo.CountAdmins(ctx, conversationID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.repo.RemoveParticipant(ctx, conversationID, userID)
}

func (s *conversationService) withParticipants(ctx context.Context, conversation models.Conversation) (dto.ConversationResponse, error) {
	response := dto.NewConversationResponse(conversation)

	participants, err := s.repo.ListParticipants(ctx, conversation.ID)
	if err != nil {
		return dto.ConversationResponse{}, err
	}
	for _, participant := range participants {
		response.Participants = append(response.Participants, dto.NewParticipantResponse(participant))
	}

	return response, nil
}

// lastMessage prefers the Redis last-message cache populated on send and
// falls back to the newest row in storage. List rendering tolerates a missing
// last message entirely.
func (s *conversationService) lastMessage(ctx context.Context, conversation models.Conversation) *dto.MessageResponse {
	if conversation.LastMessageID == 0 {
		return nil
	}

	if cached := s.lastCache.Get(ctx, conversation.ID); cached != nil {
		return cached
	}

	message, err := s.messages.LatestForConversation(ctx, conversation.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Uint("conversation_id", conversation.ID).Msg("failed to load last message")
		}
		return nil
	}

	response := dto.NewMessageResponse(message)
	return &response
}
