package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

func setupMessagingTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestDirectPairKeyIsOrderIndependent(t *testing.T) {
	require.Equal(t, DirectPairKey(7, 3), DirectPairKey(3, 7))
	require.Equal(t, "direct:3:7", DirectPairKey(7, 3))
}

func TestConversationRepositoryGetOrCreateDirectReturnsSameConversation(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	first, err := repo.GetOrCreateDirect(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Equal(t, models.ConversationTypeDirect, first.Type)

	// Reversed argument order and repeat calls resolve to the same row.
	second, err := repo.GetOrCreateDirect(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	third, err := repo.GetOrCreateDirect(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, first.ID, third.ID)

	var conversationCount int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&conversationCount).Error)
	require.Equal(t, int64(1), conversationCount)

	participants, err := repo.ListParticipants(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
}

func TestConversationRepositoryCreateGroupPersistsMembership(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	conversation := models.Conversation{
		Type:      models.ConversationTypeGroup,
		Name:      "Platform Team",
		CreatedBy: 1,
	}
	participants := []models.Participant{
		{UserID: 1, Role: models.ParticipantRoleAdmin},
		{UserID: 2, Role: models.ParticipantRoleMember},
	}

	require.NoError(t, repo.CreateGroup(context.Background(), &conversation, participants))
	require.NotZero(t, conversation.ID)

	stored, err := repo.ListParticipants(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, models.ParticipantRoleAdmin, stored[0].Role)
}

func TestConversationRepositoryFindForUserScopesAccess(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	conversation, err := repo.GetOrCreateDirect(context.Background(), 1, 2)
	require.NoError(t, err)

	found, err := repo.FindForUser(context.Background(), conversation.ID, 1)
	require.NoError(t, err)
	require.Equal(t, conversation.ID, found.ID)

	_, err = repo.FindForUser(context.Background(), conversation.ID, 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConversationRepositoryAddParticipantsIsIdempotent(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	conversation := models.Conversation{Type: models.ConversationTypeGroup, Name: "Announcements", CreatedBy: 1}
	require.NoError(t, repo.CreateGroup(context.Background(), &conversation, []models.Participant{
		{UserID: 1, Role: models.ParticipantRoleAdmin},
	}))

	add := []models.Participant{
		{ConversationID: conversation.ID, UserID: 2, Role: models.ParticipantRoleMember},
	}
	require.NoError(t, repo.AddParticipants(context.Background(), add))

	again := []models.Participant{
		{ConversationID: conversation.ID, UserID: 2, Role: models.ParticipantRoleMember},
	}
	require.NoError(t, repo.AddParticipants(context.Background(), again))

	participants, err := repo.ListParticipants(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
}

func TestConversationRepositoryAdvanceReadPointerIsMonotonic(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	conversation, err := repo.GetOrCreateDirect(context.Background(), 1, 2)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.AdvanceReadPointer(context.Background(), conversation.ID, 1, 10, now))

	participant, err := repo.FindParticipant(context.Background(), conversation.ID, 1)
	require.NoError(t, err)
	require.Equal(t, uint(10), participant.LastReadMessageID)

	// A stale retry with a smaller id leaves the pointer untouched.
	require.NoError(t, repo.AdvanceReadPointer(context.Background(), conversation.ID, 1, 5, now))

	participant, err = repo.FindParticipant(context.Background(), conversation.ID, 1)
	require.NoError(t, err)
	require.Equal(t, uint(10), participant.LastReadMessageID)

	require.NoError(t, repo.AdvanceReadPointer(context.Background(), conversation.ID, 1, 12, now))

	participant, err = repo.FindParticipant(context.Background(), conversation.ID, 1)
	require.NoError(t, err)
	require.Equal(t, uint(12), participant.LastReadMessageID)
}

func TestConversationRepositoryCountAdmins(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Conversation{}, &models.Participant{})
	repo := NewConversationRepository(db)

	conversation := models.Conversation{Type: models.ConversationTypeGroup, Name: "Ops", CreatedBy: 1}
	require.NoError(t, repo.CreateGroup(context.Background(), &conversation, []models.Participant{
		{UserID: 1, Role: models.ParticipantRoleAdmin},
		{UserID: 2, Role: models.ParticipantRoleMember},
	}))

	admins, err := repo.CountAdmins(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), admins)

	require.NoError(t, repo.RemoveParticipant(context.Background(), conversation.ID, 2))

	participants, err := repo.ListParticipants(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
}
