package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// MessagePage describes pagination for conversation history. BeforeID, when
// set, takes precedence over Offset.
type MessagePage struct {
	Limit    int
	Offset   int
	BeforeID uint
}

// MessageRepository persists conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (models.Message, error)
	Update(ctx context.Context, message *models.Message) error
	SoftDelete(ctx context.Context, id uint) error
	ListByConversation(ctx context.Context, conversationID uint, page MessagePage) ([]models.Message, error)
	Search(ctx context.Context, userID uint, query string, conversationID uint, limit int) ([]models.Message, error)
	LatestForConversation(ctx context.Context, conversationID uint) (models.Message, error)
	CountAfter(ctx context.Context, conversationID, afterID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a GORM-backed message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts the message and advances the conversation's last-message
// pointer in the same transaction, so the pointer never references a message
// that was not persisted.
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_id": message.ID,
				"updated_at":      message.CreatedAt,
			}).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Save(message).Error
}

// SoftDelete tombstones the message. Deleting an already-deleted message
// matches no row and is a no-op, which keeps retries safe.
func (r *messageRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"content":    "",
		}).Error
}

// ListByConversation fetches the most recent window in descending id order,
// then reverses it so callers always receive chronological ascending output.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint, page MessagePage) ([]models.Message, error) {
	limit := page.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if page.BeforeID > 0 {
		query = query.Where("id < ?", page.BeforeID)
	} else if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}

	var messages []models.Message
	if err := query.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Search scans message content within the conversations the user participates
// in. An explicit conversation id narrows the scope but never widens it past
// the participant set.
func (r *messageRepository) Search(ctx context.Context, userID uint, query string, conversationID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := r.db.WithContext(ctx).
		Joins("JOIN participants ON participants.conversation_id = messages.conversation_id").
		Where("participants.user_id = ?", userID).
		Where("messages.is_deleted = ?", false).
		Where("messages.content LIKE ?", "%"+query+"%")

	if conversationID > 0 {
		q = q.Where("messages.conversation_id = ?", conversationID)
	}

	var messages []models.Message
	if err := q.Order("messages.id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) LatestForConversation(ctx context.Context, conversationID uint) (models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		First(&message).Error
	if err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// CountAfter counts live messages newer than the given pointer; it backs the
// unread counter and can never go negative.
func (r *messageRepository) CountAfter(ctx context.Context, conversationID, afterID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND id > ? AND is_deleted = ?", conversationID, afterID, false).
		Count(&count).Error
	return count, err
}
