package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
)

type stubUserRepo struct {
	users   map[string]models.User
	queries int
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uint) (models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, nil
}

func (s *stubUserRepo) FindByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	s.queries++
	var out []models.User
	for _, username := range usernames {
		if user, ok := s.users[username]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type stubMentionRepo struct {
	mentions []models.Mention
}

func (s *stubMentionRepo) Create(ctx context.Context, mention *models.Mention) error {
	mention.ID = uint(len(s.mentions) + 1)
	s.mentions = append(s.mentions, *mention)
	return nil
}

func (s *stubMentionRepo) ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]models.Mention, error) {
	var out []models.Mention
	for _, mention := range s.mentions {
		if mention.MentionableType == mentionableType && mention.MentionableID == mentionableID {
			out = append(out, mention)
		}
	}
	return out, nil
}

type stubNotificationPublisher struct {
	calls []dto.NotificationCreateRequest
	err   error
}

func (s *stubNotificationPublisher) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	s.calls = append(s.calls, payload)
	if s.err != nil {
		return dto.NotificationResponse{}, s.err
	}
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type, Message: payload.Message}, nil
}

func TestMentionServiceParseMentionsResolvesAndDedupes(t *testing.T) {
	users := &stubUserRepo{users: map[string]models.User{
		"jdoe":  {ID: 1, Username: "jdoe"},
		"asmit": {ID: 2, Username: "asmit"},
	}}
	svc := NewMentionService(users, &stubMentionRepo{}, &stubNotificationPublisher{}, zerolog.Nop())

	resolved, err := svc.ParseMentions(context.Background(), "ping @jdoe and @asmit, also @jdoe again and @ghost")
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	require.Equal(t, 1, users.queries)
}

func TestMentionServiceParseMentionsWithoutHandlesQueriesNothing(t *testing.T) {
	users := &stubUserRepo{users: map[string]models.User{}}
	svc := NewMentionService(users, &stubMentionRepo{}, &stubNotificationPublisher{}, zerolog.Nop())

	resolved, err := svc.ParseMentions(context.Background(), "a perfectly ordinary sentence")
	require.NoError(t, err)
	require.Nil(t, resolved)
	require.Zero(t, users.queries, "text without handles must not hit the directory")
}

func TestMentionServiceCreateMentionPublishesNotification(t *testing.T) {
	mentions := &stubMentionRepo{}
	notifications := &stubNotificationPublisher{}
	svc := NewMentionService(&stubUserRepo{}, mentions, notifications, zerolog.Nop())

	created, err := svc.CreateMention(context.Background(), MentionInput{
		MentionableType:   "message",
		MentionableID:     10,
		MentionedUserID:   2,
		MentionedByUserID: 1,
		Link:              "/conversations/3#message-10",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, notifications.calls, 1)
	require.Equal(t, uint(2), notifications.calls[0].UserID)
	require.Equal(t, models.NotificationTypeMention, notifications.calls[0].Type)
	require.Equal(t, "/conversations/3#message-10", notifications.calls[0].Link)
}

func TestMentionServiceCreateMentionSurvivesPublishFailure(t *testing.T) {
	mentions := &stubMentionRepo{}
	notifications := &stubNotificationPublisher{err: context.DeadlineExceeded}
	svc := NewMentionService(&stubUserRepo{}, mentions, notifications, zerolog.Nop())

	created, err := svc.CreateMention(context.Background(), MentionInput{
		MentionableType: "post",
		MentionableID:   5,
		MentionedUserID: 3,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, mentions.mentions, 1)
}
