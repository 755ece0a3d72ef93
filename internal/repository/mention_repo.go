package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// MentionRepository persists resolved @-mentions.
type MentionRepository interface {
	Create(ctx context.Context, mention *models.Mention) error
	ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]models.Mention, error)
}

type mentionRepository struct {
	db *gorm.DB
}

// NewMentionRepository constructs a GORM-backed mention repository.
func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) Create(ctx context.Context, mention *models.Mention) error {
	return r.db.WithContext(ctx).Create(mention).Error
}

func (r *mentionRepository) ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]models.Mention, error) {
	var mentions []models.Mention
	err := r.db.WithContext(ctx).
		Where("mentionable_type = ? AND mentionable_id = ?", mentionableType, mentionableID).
		Order("created_at ASC").
		Find(&mentions).Error
	if err != nil {
		return nil, err
	}
	return mentions, nil
}
