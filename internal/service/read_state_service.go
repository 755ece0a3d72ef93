package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

// ReadStateService tracks per-participant read pointers and the unread
// counters derived from them.
type ReadStateService interface {
	MarkRead(ctx context.Context, conversationID, userID uint, payload dto.MarkReadRequest) (dto.ParticipantResponse, error)
	UnreadCount(ctx context.Context, conversationID, userID uint) (int64, error)
}

type readStateService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewReadStateService constructs a read-state service.
func NewReadStateService(conversations repository.ConversationRepository, messages repository.MessageRepository, validate *validator.Validate, logger zerolog.Logger) ReadStateService {
	return &readStateService{
		conversations: conversations,
		messages:      messages,
		validator:     validate,
		logger:        logger.With().Str("component", "read_state_service").Logger(),
	}
}

// MarkRead advances the caller's read pointer to the given message. The
// pointer only ever moves forward: a stale or out-of-order call with a smaller
// id succeeds without changing anything, so delivery retries are harmless.
func (s *readStateService) MarkRead(ctx context.Context, conversationID, userID uint, payload dto.MarkReadRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, err
	}

	message, err := s.messages.FindByID(ctx, payload.LastMessageID)
	if err != nil {
		return dto.ParticipantResponse{}, translateNotFound(err)
	}
	if message.ConversationID != conversationID {
		return dto.ParticipantResponse{}, &ValidationError{Reason: "message does not belong to conversation"}
	}

	if _, err := s.conversations.FindParticipant(ctx, conversationID, userID); err != nil {
		return dto.ParticipantResponse{}, translateNotFound(err)
	}

	if err := s.conversations.AdvanceReadPointer(ctx, conversationID, userID, payload.LastMessageID, time.Now().UTC()); err != nil {
		return dto.ParticipantResponse{}, err
	}

	participant, err := s.conversations.FindParticipant(ctx, conversationID, userID)
	if err != nil {
		return dto.ParticipantResponse{}, translateNotFound(err)
	}

	return dto.NewParticipantResponse(participant), nil
}

// UnreadCount counts live messages newer than the caller's read pointer.
// Tombstoned messages never count, so deleting unread messages shrinks the
// counter instead of stranding it.
func (s *readStateService) UnreadCount(ctx context.Context, conversationID, userID uint) (int64, error) {
	participant, err := s.conversations.FindParticipant(ctx, conversationID, userID)
	if err != nil {
		return 0, translateNotFound(err)
	}

	return s.messages.CountAfter(ctx, conversationID, participant.LastReadMessageID)
}
