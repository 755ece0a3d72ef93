package dto

import (
	"time"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// DirectConversationRequest asks for the single conversation shared with peer_id.
type DirectConversationRequest struct {
	PeerID uint `json:"peer_id" validate:"required"`
}

// GroupConversationCreateRequest is the payload to create a group conversation.
// MemberIDs may be empty (creator-only group); duplicates collapse to one
// participant.
type GroupConversationCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	MemberIDs   []uint `json:"member_ids" validate:"omitempty,dive,required"`
}

// AddParticipantsRequest adds members to an existing group.
type AddParticipantsRequest struct {
	MemberIDs []uint `json:"member_ids" validate:"required,min=1,dive,required"`
}

// MarkReadRequest advances the caller's read pointer in a conversation.
type MarkReadRequest struct {
	LastMessageID uint `json:"last_message_id" validate:"required"`
}

// ParticipantResponse is the serialized membership row.
type ParticipantResponse struct {
	UserID            uint       `json:"user_id"`
	Role              string     `json:"role"`
	JoinedAt          time.Time  `json:"joined_at"`
	LastReadMessageID uint       `json:"last_read_message_id"`
	LastReadAt        *time.Time `json:"last_read_at,omitempty"`
}

// ConversationResponse is the serialized representation of a conversation.
type ConversationResponse struct {
	ID           uint                  `json:"id"`
	Type         string                `json:"type"`
	Name         string                `json:"name,omitempty"`
	Description  string                `json:"description,omitempty"`
	CreatedBy    uint                  `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
}

// ConversationSummary is the list-rendering shape: the conversation plus the
// caller's unread count and a denormalized last message.
type ConversationSummary struct {
	ConversationResponse
	UnreadCount int64            `json:"unread_count"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
}

// NewParticipantResponse converts a model into a DTO.
func NewParticipantResponse(participant models.Participant) ParticipantResponse {
	return ParticipantResponse{
		UserID:            participant.UserID,
		Role:              participant.Role,
		JoinedAt:          participant.JoinedAt,
		LastReadMessageID: participant.LastReadMessageID,
		LastReadAt:        participant.LastReadAt,
	}
}

// NewConversationResponse converts a model into a DTO.
func NewConversationResponse(conversation models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:          conversation.ID,
		Type:        conversation.Type,
		Name:        conversation.Name,
		Description: conversation.Description,
		CreatedBy:   conversation.CreatedBy,
		CreatedAt:   conversation.CreatedAt,
	}
}
