package models

import "time"

// Notification types produced by the dispatcher.
const (
	NotificationTypeMention       = "mention"
	NotificationTypeComment       = "comment"
	NotificationTypeReaction      = "reaction"
	NotificationTypeMessage       = "message"
	NotificationTypeEventReminder = "event_reminder"
	NotificationTypeReply         = "discussion_reply"
)

var notificationTypes = map[string]struct{}{
	NotificationTypeMention:       {},
	NotificationTypeComment:       {},
	NotificationTypeReaction:      {},
	NotificationTypeMessage:       {},
	NotificationTypeEventReminder: {},
	NotificationTypeReply:         {},
}

// ValidNotificationType reports whether value is a known notification type.
func ValidNotificationType(value string) bool {
	_, ok := notificationTypes[value]
	return ok
}

// Notification is created by the dispatcher in response to upstream events
// (mention resolved, reaction added, comment posted, reminder fired) and is
// never written directly by end-user action.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"notification_type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Link      string    `gorm:"size:1024" json:"link,omitempty"`
	Read      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
