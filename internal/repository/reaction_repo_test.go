package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/models"
)

func TestReactionRepositoryUpsertKeepsSingleRowPerUser(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Reaction{})
	repo := NewReactionRepository(db)

	first := models.Reaction{SubjectType: "post", SubjectID: 1, UserID: 7, Type: models.ReactionTypeLike}
	created, err := repo.Upsert(context.Background(), &first)
	require.NoError(t, err)
	require.True(t, created)

	second := models.Reaction{SubjectType: "post", SubjectID: 1, UserID: 7, Type: models.ReactionTypeLove}
	created, err = repo.Upsert(context.Background(), &second)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Reaction{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.FindByUser(context.Background(), "post", 1, 7)
	require.NoError(t, err)
	require.Equal(t, models.ReactionTypeLove, stored.Type)
}

func TestReactionRepositorySummaryAggregatesPerType(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Reaction{})
	repo := NewReactionRepository(db)

	reactions := []models.Reaction{
		{SubjectType: "post", SubjectID: 1, UserID: 1, Type: models.ReactionTypeLike},
		{SubjectType: "post", SubjectID: 1, UserID: 2, Type: models.ReactionTypeLike},
		{SubjectType: "post", SubjectID: 1, UserID: 3, Type: models.ReactionTypeCelebrate},
		{SubjectType: "post", SubjectID: 2, UserID: 1, Type: models.ReactionTypeFunny},
	}
	for i := range reactions {
		_, err := repo.Upsert(context.Background(), &reactions[i])
		require.NoError(t, err)
	}

	counts, err := repo.Summary(context.Background(), "post", 1)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.ReactionTypeLike, counts[0].Type)
	require.Equal(t, int64(2), counts[0].Count)
	require.Equal(t, models.ReactionTypeCelebrate, counts[1].Type)
	require.Equal(t, int64(1), counts[1].Count)
}

func TestReactionRepositoryDeleteIsIdempotent(t *testing.T) {
	db := setupMessagingTestDB(t, &models.Reaction{})
	repo := NewReactionRepository(db)

	reaction := models.Reaction{SubjectType: "comment", SubjectID: 4, UserID: 9, Type: models.ReactionTypeSupport}
	_, err := repo.Upsert(context.Background(), &reaction)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), "comment", 4, 9))
	require.NoError(t, repo.Delete(context.Background(), "comment", 4, 9))

	_, err = repo.FindByUser(context.Background(), "comment", 4, 9)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
