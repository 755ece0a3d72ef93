package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
)

type memoryNotificationRepo struct {
	notifications []models.Notification
}

func (m *memoryNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = uint(len(m.notifications) + 1)
	notification.CreatedAt = time.Now()
	m.notifications = append(m.notifications, *notification)
	return nil
}

func (m *memoryNotificationRepo) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range m.notifications {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (m *memoryNotificationRepo) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	for i, notification := range m.notifications {
		if notification.ID == id && notification.UserID == userID {
			m.notifications[i].Read = true
			return m.notifications[i], nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (m *memoryNotificationRepo) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	var updated int64
	for i, notification := range m.notifications {
		if notification.UserID == userID && !notification.Read {
			m.notifications[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (m *memoryNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, notification := range m.notifications {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

func newTestNotificationService(repo *memoryNotificationRepo) NotificationService {
	return NewNotificationService(repo, nil, "", nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestNotificationServicePublishRejectsUnknownType(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newTestNotificationService(repo)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  1,
		Type:    "marketing",
		Message: "Buy now",
	})
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Equal(t, "Invalid notification type: marketing", err.Error())
	require.Empty(t, repo.notifications)
}

func TestNotificationServicePublishSanitizesAndPersists(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newTestNotificationService(repo)

	notification, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  1,
		Type:    models.NotificationTypeMention,
		Message: "<b>You</b> were mentioned",
		Link:    "/conversations/1#message-2",
	})
	require.NoError(t, err)
	require.Equal(t, "You were mentioned", notification.Message)
	require.Len(t, repo.notifications, 1)
}

func TestNotificationServicePublishDeliversToSubscribers(t *testing.T) {
	svc := newTestNotificationService(&memoryNotificationRepo{})

	stream, cleanup := svc.Subscribe(7)
	defer cleanup()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  7,
		Type:    models.NotificationTypeMessage,
		Message: "New message in Platform Team",
	})
	require.NoError(t, err)

	select {
	case delivered := <-stream:
		require.Equal(t, uint(7), delivered.UserID)
		require.Equal(t, models.NotificationTypeMessage, delivered.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a streamed notification")
	}
}

func TestNotificationServicePublishDoesNotCrossUsers(t *testing.T) {
	svc := newTestNotificationService(&memoryNotificationRepo{})

	stream, cleanup := svc.Subscribe(7)
	defer cleanup()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  8,
		Type:    models.NotificationTypeMessage,
		Message: "Not for user seven",
	})
	require.NoError(t, err)

	select {
	case delivered := <-stream:
		t.Fatalf("unexpected delivery: %+v", delivered)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationServiceMarkReadTranslatesMissingRow(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newTestNotificationService(repo)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  1,
		Type:    models.NotificationTypeReaction,
		Message: "Someone reacted to your post",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), published.ID, 2)
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.MarkRead(context.Background(), published.ID, 1)
	require.NoError(t, err)
	require.True(t, updated.Read)
}
