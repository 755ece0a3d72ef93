package models

import "time"

// Message types.
const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// Message is one entry in a conversation's append-only sequence. Deletion is a
// tombstone so ordering and quoted replies stay intact; ids increase
// monotonically within a conversation, which is what before_message_id
// cursoring relies on.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	Content        string    `gorm:"type:text" json:"content"`
	Type           string    `gorm:"size:16;not null;default:text" json:"message_type"`
	AttachmentURL  string    `gorm:"size:1024" json:"attachment_url,omitempty"`
	IsEdited       bool      `gorm:"not null;default:false" json:"is_edited"`
	IsDeleted      bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
