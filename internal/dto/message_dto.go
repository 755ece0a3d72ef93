package dto

import (
	"time"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// MessageSendRequest is the payload to post a message into a conversation.
// Content is required unless message_type is "file" with an attachment url;
// that cross-field rule is enforced in the service.
type MessageSendRequest struct {
	Content       string `json:"content" validate:"omitempty,max=4000"`
	Type          string `json:"message_type" validate:"omitempty,oneof=text file"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,url,max=1024"`
}

// MessageEditRequest replaces the content of an existing message.
type MessageEditRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// MessageHistoryQuery paginates conversation history. before_message_id takes
// precedence over offset when both are present.
type MessageHistoryQuery struct {
	Limit           int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset          int  `query:"offset" validate:"omitempty,min=0"`
	BeforeMessageID uint `query:"before_message_id"`
}

// MessageSearchQuery scopes a content search to the caller's conversations.
type MessageSearchQuery struct {
	Query          string `query:"q" validate:"required,min=1,max=255"`
	ConversationID uint   `query:"conversation_id"`
	Limit          int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	Content        string    `json:"content"`
	Type           string    `json:"message_type"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	IsEdited       bool      `json:"is_edited"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		Type:           message.Type,
		AttachmentURL:  message.AttachmentURL,
		IsEdited:       message.IsEdited,
		IsDeleted:      message.IsDeleted,
		CreatedAt:      message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}
