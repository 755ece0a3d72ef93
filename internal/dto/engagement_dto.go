package dto

import (
	"time"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// ReactionAddRequest upserts the caller's reaction on a content subject.
// OwnerID is optionally supplied by the content module that owns the subject;
// when present and different from the reactor it drives a reaction
// notification. The reaction type is deliberately not constrained here so the
// service can reject unknown types with a machine-checkable reason.
type ReactionAddRequest struct {
	SubjectType string `json:"subject_type" validate:"required,oneof=post comment"`
	SubjectID   uint   `json:"subject_id" validate:"required"`
	Type        string `json:"reaction_type" validate:"required,max=32"`
	OwnerID     uint   `json:"owner_id" validate:"omitempty"`
}

// ReactionRemoveRequest removes the caller's reaction from a subject.
type ReactionRemoveRequest struct {
	SubjectType string `json:"subject_type" validate:"required,oneof=post comment"`
	SubjectID   uint   `json:"subject_id" validate:"required"`
}

// ReactionResponse is the serialized representation of a reaction row.
type ReactionResponse struct {
	ID          uint      `json:"id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uint      `json:"subject_id"`
	UserID      uint      `json:"user_id"`
	Type        string    `json:"reaction_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReactionSummaryResponse aggregates per-type counts for a subject.
type ReactionSummaryResponse struct {
	SubjectType string                 `json:"subject_type"`
	SubjectID   uint                   `json:"subject_id"`
	Counts      []models.ReactionCount `json:"counts"`
}

// NewReactionResponse converts a model into a DTO.
func NewReactionResponse(reaction models.Reaction) ReactionResponse {
	return ReactionResponse{
		ID:          reaction.ID,
		SubjectType: reaction.SubjectType,
		SubjectID:   reaction.SubjectID,
		UserID:      reaction.UserID,
		Type:        reaction.Type,
		CreatedAt:   reaction.CreatedAt,
	}
}

// MentionResponse is the serialized representation of a resolved mention.
type MentionResponse struct {
	ID                uint      `json:"id"`
	MentionableType   string    `json:"mentionable_type"`
	MentionableID     uint      `json:"mentionable_id"`
	MentionedUserID   uint      `json:"mentioned_user_id"`
	MentionedByUserID uint      `json:"mentioned_by_user_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewMentionResponse converts a model into a DTO.
func NewMentionResponse(mention models.Mention) MentionResponse {
	return MentionResponse{
		ID:                mention.ID,
		MentionableType:   mention.MentionableType,
		MentionableID:     mention.MentionableID,
		MentionedUserID:   mention.MentionedUserID,
		MentionedByUserID: mention.MentionedByUserID,
		CreatedAt:         mention.CreatedAt,
	}
}
