package dto

import (
	"time"
)

// PaginationMeta describes result paging for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityCreateRequest appends one entry to the activity stream. Content
// modules call this on post/event creation; reaction and share events
// originate inside this service.
type ActivityCreateRequest struct {
	ActivityType string                 `json:"activity_type" validate:"required,max=32"`
	TargetType   string                 `json:"target_type" validate:"required,max=32"`
	TargetID     uint                   `json:"target_id" validate:"required"`
	Metadata     map[string]interface{} `json:"metadata" validate:"omitempty"`
}

// ActivityFeedRequest filters the combined activity feed. The service clamps
// limit and offset, so out-of-range values degrade instead of erroring.
type ActivityFeedRequest struct {
	Limit  int      `query:"limit"`
	Offset int      `query:"offset"`
	Types  []string `query:"activity_types"`
}

// ActivityFeedItem is one rendered feed entry. Metadata is the snapshot taken
// at write time, so entries stay renderable when the target content changed.
type ActivityFeedItem struct {
	ID           uint                   `json:"id"`
	UserID       uint                   `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	TargetType   string                 `json:"target_type"`
	TargetID     uint                   `json:"target_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ActivityFeedResponse is the paged feed payload.
type ActivityFeedResponse struct {
	Items      []ActivityFeedItem `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
	CacheHit   bool               `json:"cache_hit"`
}
