package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// ActivityFeedFilter narrows activity feed queries.
type ActivityFeedFilter struct {
	Limit  int
	Offset int
	Types  []string
}

// ActivityRepository persists the append-only activity stream.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListFeed(ctx context.Context, filter ActivityFeedFilter) ([]models.Activity, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) ListFeed(ctx context.Context, filter ActivityFeedFilter) ([]models.Activity, int64, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Activity{})
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Activity
	if err := query.
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
