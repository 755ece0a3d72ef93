package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.Activity
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.Activity) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) ListFeed(ctx context.Context, filter repository.ActivityFeedFilter) ([]models.Activity, int64, error) {
	allowed := func(entryType string) bool {
		if len(filter.Types) == 0 {
			return true
		}
		for _, t := range filter.Types {
			if t == entryType {
				return true
			}
		}
		return false
	}

	var filtered []models.Activity
	for i := len(m.entries) - 1; i >= 0; i-- {
		if allowed(m.entries[i].Type) {
			filtered = append(filtered, m.entries[i])
		}
	}
	return filtered, int64(len(filtered)), nil
}

func newTestActivityService(t *testing.T, repo repository.ActivityRepository) (ActivityService, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	return NewActivityService(repo, redisClient, time.Minute, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()), server
}

func TestActivityServiceRecordRejectsUnknownType(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc, _ := newTestActivityService(t, repo)

	err := svc.Record(context.Background(), 1, dto.ActivityCreateRequest{
		ActivityType: "logged_in",
		TargetType:   "session",
		TargetID:     1,
	})
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Empty(t, repo.entries)
}

func TestActivityServiceRecordPersistsEntry(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc, _ := newTestActivityService(t, repo)

	err := svc.Record(context.Background(), 1, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypeMessageSent,
		TargetType:   "conversation",
		TargetID:     3,
		Metadata:     map[string]interface{}{"message_id": 12},
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)
	require.Equal(t, models.ActivityTypeMessageSent, repo.entries[0].Type)
	require.Equal(t, uint(3), repo.entries[0].TargetID)
}

func TestActivityServiceFeedCachesResults(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc, _ := newTestActivityService(t, repo)

	require.NoError(t, svc.Record(context.Background(), 1, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypePostCreated,
		TargetType:   "post",
		TargetID:     1,
	}))
	require.NoError(t, svc.Record(context.Background(), 2, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypeReactionAdded,
		TargetType:   "post",
		TargetID:     1,
	}))

	first, err := svc.Feed(context.Background(), dto.ActivityFeedRequest{Limit: 10})
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 2)
	// Newest entry first.
	require.Equal(t, models.ActivityTypeReactionAdded, first.Items[0].ActivityType)

	second, err := svc.Feed(context.Background(), dto.ActivityFeedRequest{Limit: 10})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Len(t, second.Items, 2)
}

func TestActivityServiceFeedFiltersByType(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc, _ := newTestActivityService(t, repo)

	require.NoError(t, svc.Record(context.Background(), 1, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypePostCreated,
		TargetType:   "post",
		TargetID:     1,
	}))
	require.NoError(t, svc.Record(context.Background(), 1, dto.ActivityCreateRequest{
		ActivityType: models.ActivityTypeEventCreated,
		TargetType:   "event",
		TargetID:     2,
	}))

	feed, err := svc.Feed(context.Background(), dto.ActivityFeedRequest{Limit: 10, Types: []string{" Post_Created "}})
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	require.Equal(t, models.ActivityTypePostCreated, feed.Items[0].ActivityType)
}
