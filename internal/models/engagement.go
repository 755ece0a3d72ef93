package models

import "time"

// Reaction types accepted on reactable content.
const (
	ReactionTypeLike       = "like"
	ReactionTypeLove       = "love"
	ReactionTypeCelebrate  = "celebrate"
	ReactionTypeInsightful = "insightful"
	ReactionTypeSupport    = "support"
	ReactionTypeFunny      = "funny"
)

var reactionTypes = map[string]struct{}{
	ReactionTypeLike:       {},
	ReactionTypeLove:       {},
	ReactionTypeCelebrate:  {},
	ReactionTypeInsightful: {},
	ReactionTypeSupport:    {},
	ReactionTypeFunny:      {},
}

// ValidReactionType reports whether value is one of the accepted reaction types.
func ValidReactionType(value string) bool {
	_, ok := reactionTypes[value]
	return ok
}

// Reaction records one user's reaction on a piece of reactable content.
// The unique index over (subject_type, subject_id, user_id) backs the upsert:
// a second reaction from the same user replaces the stored type instead of
// accumulating rows.
type Reaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SubjectType string    `gorm:"size:32;not null;index:idx_reaction_subject_user,unique;index:idx_reaction_subject" json:"subject_type"`
	SubjectID   uint      `gorm:"not null;index:idx_reaction_subject_user,unique;index:idx_reaction_subject" json:"subject_id"`
	UserID      uint      `gorm:"not null;index:idx_reaction_subject_user,unique" json:"user_id"`
	Type        string    `gorm:"size:32;not null" json:"reaction_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReactionCount is the aggregated per-type tally for a subject.
type ReactionCount struct {
	Type  string `json:"reaction_type"`
	Count int64  `json:"count"`
}

// Mention records a resolved @-handle inside mentionable content. Rows only
// exist for handles that matched a real user.
type Mention struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MentionableType   string    `gorm:"size:32;not null;index:idx_mention_subject" json:"mentionable_type"`
	MentionableID     uint      `gorm:"not null;index:idx_mention_subject" json:"mentionable_id"`
	MentionedUserID   uint      `gorm:"not null;index" json:"mentioned_user_id"`
	MentionedByUserID uint      `gorm:"not null" json:"mentioned_by_user_id"`
	CreatedAt         time.Time `json:"created_at"`
}
