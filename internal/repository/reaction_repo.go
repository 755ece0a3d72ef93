package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// ReactionRepository persists reactions keyed by (subject_type, subject_id, user_id).
type ReactionRepository interface {
	// Upsert reports whether it inserted a new row (true) or overwrote the
	// user's existing reaction (false).
	Upsert(ctx context.Context, reaction *models.Reaction) (bool, error)
	Delete(ctx context.Context, subjectType string, subjectID, userID uint) error
	Summary(ctx context.Context, subjectType string, subjectID uint) ([]models.ReactionCount, error)
	FindByUser(ctx context.Context, subjectType string, subjectID, userID uint) (models.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository constructs a GORM-backed reaction repository.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert inserts the reaction or, when the user already reacted to the
// subject, overwrites the stored type in place. The conflict target is the
// unique (subject_type, subject_id, user_id) index, so concurrent
// double-clicks cannot produce duplicate rows. The insert runs with DO
// NOTHING first: its row count is the authoritative signal for whether this
// was the user's first reaction, which the service uses to decide on owner
// notification without a racy pre-read.
func (r *reactionRepository) Upsert(ctx context.Context, reaction *models.Reaction) (bool, error) {
	insert := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_type"}, {Name: "subject_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(reaction)
	if insert.Error != nil {
		return false, insert.Error
	}
	if insert.RowsAffected == 1 {
		return true, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", reaction.SubjectType, reaction.SubjectID, reaction.UserID).
		Updates(map[string]interface{}{
			"type":       reaction.Type,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return false, err
	}

	stored, err := r.FindByUser(ctx, reaction.SubjectType, reaction.SubjectID, reaction.UserID)
	if err != nil {
		return false, err
	}
	*reaction = stored
	return false, nil
}

// Delete removes the user's reaction if present. A missing row is a no-op.
func (r *reactionRepository) Delete(ctx context.Context, subjectType string, subjectID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
		Delete(&models.Reaction{}).Error
}

// Summary aggregates counts per reaction type; types with zero rows simply do
// not appear.
func (r *reactionRepository) Summary(ctx context.Context, subjectType string, subjectID uint) ([]models.ReactionCount, error) {
	var counts []models.ReactionCount
	err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select("type AS type, COUNT(*) AS count").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Group("type").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *reactionRepository) FindByUser(ctx context.Context, subjectType string, subjectID, userID uint) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ? AND user_id = ?", subjectType, subjectID, userID).
		First(&reaction).Error
	if err != nil {
		return models.Reaction{}, err
	}
	return reaction, nil
}
