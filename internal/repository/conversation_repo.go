package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wrenhq/wren-social-api/internal/models"
)

// DirectPairKey returns the canonical pair key for a direct conversation
// between two users. The key is order-independent.
func DirectPairKey(userA, userB uint) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("direct:%d:%d", userA, userB)
}

// ConversationRepository persists conversations and their participant rows,
// including each participant's read pointer.
type ConversationRepository interface {
	GetOrCreateDirect(ctx context.Context, userA, userB uint) (models.Conversation, error)
	CreateGroup(ctx context.Context, conversation *models.Conversation, participants []models.Participant) error
	FindForUser(ctx context.Context, id, userID uint) (models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
	FindParticipant(ctx context.Context, conversationID, userID uint) (models.Participant, error)
	ListParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error)
	AddParticipants(ctx context.Context, participants []models.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uint) error
	CountAdmins(ctx context.Context, conversationID uint) (int64, error)
	AdvanceReadPointer(ctx context.Context, conversationID, userID, messageID uint, readAt time.Time) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs a GORM-backed conversation repository.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreateDirect resolves the single conversation for an unordered user
// pair. The insert runs with ON CONFLICT DO NOTHING against the unique
// pair_key index, so two concurrent first-contact callers both end up reading
// the same row; there is no check-then-insert window.
func (r *conversationRepository) GetOrCreateDirect(ctx context.Context, userA, userB uint) (models.Conversation, error) {
	key := DirectPairKey(userA, userB)

	conversation := models.Conversation{
		Type:      models.ConversationTypeDirect,
		PairKey:   &key,
		CreatedBy: userA,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&conversation)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Lost the race (or the pair already existed): load the winner.
			return tx.Where("pair_key = ?", key).First(&conversation).Error
		}

		participants := []models.Participant{
			{ConversationID: conversation.ID, UserID: userA, Role: models.ParticipantRoleMember},
		}
		if userB != userA {
			participants = append(participants, models.Participant{
				ConversationID: conversation.ID, UserID: userB, Role: models.ParticipantRoleMember,
			})
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return models.Conversation{}, err
	}

	return conversation, nil
}

func (r *conversationRepository) CreateGroup(ctx context.Context, conversation *models.Conversation, participants []models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}

		for i := range participants {
			participants[i].ConversationID = conversation.ID
		}
		if len(participants) == 0 {
			return nil
		}
		return tx.Create(&participants).Error
	})
}

// FindForUser loads a conversation only when the requesting user participates
// in it. Access control lives in the query predicate.
func (r *conversationRepository) FindForUser(ctx context.Context, id, userID uint) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN participants ON participants.conversation_id = conversations.id").
		Where("conversations.id = ? AND participants.user_id = ?", id, userID).
		First(&conversation).Error
	if err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN participants ON participants.conversation_id = conversations.id").
		Where("participants.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) FindParticipant(ctx context.Context, conversationID, userID uint) (models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&participant).Error
	if err != nil {
		return models.Participant{}, err
	}
	return participant, nil
}

func (r *conversationRepository) ListParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *conversationRepository) AddParticipants(ctx context.Context, participants []models.Participant) error {
	if len(participants) == 0 {
		return nil
	}

	// Re-adding an existing participant is a no-op rather than an error.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&participants).Error
}

func (r *conversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.Participant{}).Error
}

func (r *conversationRepository) CountAdmins(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("conversation_id = ? AND role = ?", conversationID, models.ParticipantRoleAdmin).
		Count(&count).Error
	return count, err
}

// AdvanceReadPointer moves the participant's read pointer forward. The
// conditional predicate makes the write max-writer-wins: a stale retry with a
// smaller message id matches no row and leaves the pointer untouched.
func (r *conversationRepository) AdvanceReadPointer(ctx context.Context, conversationID, userID, messageID uint, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ? AND last_read_message_id < ?", conversationID, userID, messageID).
		Updates(map[string]interface{}{
			"last_read_message_id": messageID,
			"last_read_at":         readAt,
		}).Error
}
