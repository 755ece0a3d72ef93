package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// UserRepository reads directory users for mention resolution and display.
// The directory is owned by the LDAP sync tooling; this service never writes it.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
