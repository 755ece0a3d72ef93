package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity types accepted into the feed.
const (
	ActivityTypePostCreated   = "post_created"
	ActivityTypeEventCreated  = "event_created"
	ActivityTypeCommentAdded  = "comment_added"
	ActivityTypeMessageSent   = "message_sent"
	ActivityTypeReactionAdded = "reaction_added"
	ActivityTypeContentShared = "content_shared"
)

var activityTypes = map[string]struct{}{
	ActivityTypePostCreated:   {},
	ActivityTypeEventCreated:  {},
	ActivityTypeCommentAdded:  {},
	ActivityTypeMessageSent:   {},
	ActivityTypeReactionAdded: {},
	ActivityTypeContentShared: {},
}

// ValidActivityType reports whether value is a known activity type.
func ValidActivityType(value string) bool {
	_, ok := activityTypes[value]
	return ok
}

// Activity is one immutable entry in the cross-content activity stream.
// Metadata carries a denormalized snapshot (title, excerpt) taken at write
// time so the feed still renders when the referenced content has since been
// edited or removed.
type Activity struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	Type       string            `gorm:"size:32;not null;index" json:"activity_type"`
	TargetType string            `gorm:"size:32;not null" json:"target_type"`
	TargetID   uint              `gorm:"not null" json:"target_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
