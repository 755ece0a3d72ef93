package models

import "time"

// User mirrors the directory entry for a platform member. Rows are provisioned
// by the LDAP sync tooling; this service only reads them for mention
// resolution and participant display.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Email       string    `gorm:"size:255;index" json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
