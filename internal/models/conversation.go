package models

import "time"

// Conversation types.
const (
	ConversationTypeDirect = "direct"
	ConversationTypeGroup  = "group"
)

// Participant roles.
const (
	ParticipantRoleAdmin  = "admin"
	ParticipantRoleMember = "member"
)

// Conversation represents a direct or group thread between users.
//
// PairKey is only populated for direct conversations: it is the canonical
// "direct:<minUserID>:<maxUserID>" form of the unordered participant pair.
// The unique index on it is the atomic primitive that makes concurrent
// first-contact creation collapse onto a single row.
type Conversation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Type          string    `gorm:"size:16;not null;index" json:"type"`
	Name          string    `gorm:"size:255" json:"name,omitempty"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	PairKey       *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedBy     uint      `gorm:"not null;index" json:"created_by"`
	LastMessageID uint      `gorm:"not null;default:0" json:"last_message_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Participant binds a user to a conversation and carries their read pointer.
// Rows are hard-deleted on leave; last_read_message_id only ever moves forward.
type Participant struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ConversationID    uint       `gorm:"not null;index:idx_participant_pair,unique" json:"conversation_id"`
	UserID            uint       `gorm:"not null;index:idx_participant_pair,unique;index" json:"user_id"`
	Role              string     `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt          time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LastReadMessageID uint       `gorm:"not null;default:0" json:"last_read_message_id"`
	LastReadAt        *time.Time `json:"last_read_at,omitempty"`
}
