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
	"gorm.io/gorm"

	"github.com/wrenhq/wren-social-api/internal/dto"
	"github.com/wrenhq/wren-social-api/internal/models"
	"github.com/wrenhq/wren-social-api/internal/repository"
)

type stubConversationRepo struct {
	participants map[uint][]uint
}

func (s *stubConversationRepo) GetOrCreateDirect(ctx context.Context, userA, userB uint) (models.Conversation, error) {
	return models.Conversation{ID: 1, Type: models.ConversationTypeDirect}, nil
}

func (s *stubConversationRepo) CreateGroup(ctx context.Context, conversation *models.Conversation, participants []models.Participant) error {
	conversation.ID = 1
	return nil
}

func (s *stubConversationRepo) FindForUser(ctx context.Context, id, userID uint) (models.Conversation, error) {
	if _, err := s.FindParticipant(ctx, id, userID); err != nil {
		return models.Conversation{}, err
	}
	return models.Conversation{ID: id, Type: models.ConversationTypeGroup}, nil
}

func (s *stubConversationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return nil, nil
}

func (s *stubConversationRepo) FindParticipant(ctx context.Context, conversationID, userID uint) (models.Participant, error) {
	for _, member := range s.participants[conversationID] {
		if member == userID {
			return models.Participant{ConversationID: conversationID, UserID: userID, Role: models.ParticipantRoleMember}, nil
		}
	}
	return models.Participant{}, gorm.ErrRecordNotFound
}

func (s *stubConversationRepo) ListParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error) {
	var out []models.Participant
	for _, member := range s.participants[conversationID] {
		out = append(out, models.Participant{ConversationID: conversationID, UserID: member})
	}
	return out, nil
}

func (s *stubConversationRepo) AddParticipants(ctx context.Context, participants []models.Participant) error {
	return nil
}

func (s *stubConversationRepo) RemoveParticipant(ctx context.Context, conversationID, userID uint) error {
	return nil
}

func (s *stubConversationRepo) CountAdmins(ctx context.Context, conversationID uint) (int64, error) {
	return 1, nil
}

func (s *stubConversationRepo) AdvanceReadPointer(ctx context.Context, conversationID, userID, messageID uint, readAt time.Time) error {
	return nil
}

type stubMessageRepo struct {
	messages map[uint]models.Message
	nextID   uint
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[uint]models.Message), nextID: 1}
}

func (s *stubMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = s.nextID
	message.CreatedAt = time.Now()
	s.nextID++
	s.messages[message.ID] = *message
	return nil
}

func (s *stubMessageRepo) FindByID(ctx context.Context, id uint) (models.Message, error) {
	if message, ok := s.messages[id]; ok {
		return message, nil
	}
	return models.Message{}, gorm.ErrRecordNotFound
}

func (s *stubMessageRepo) Update(ctx context.Context, message *models.Message) error {
	s.messages[message.ID] = *message
	return nil
}

func (s *stubMessageRepo) SoftDelete(ctx context.Context, id uint) error {
	if message, ok := s.messages[id]; ok && !message.IsDeleted {
		message.IsDeleted = true
		message.Content = ""
		s.messages[id] = message
	}
	return nil
}

func (s *stubMessageRepo) ListByConversation(ctx context.Context, conversationID uint, page repository.MessagePage) ([]models.Message, error) {
	var out []models.Message
	for _, message := range s.messages {
		if message.ConversationID == conversationID {
			out = append(out, message)
		}
	}
	return out, nil
}

func (s *stubMessageRepo) Search(ctx context.Context, userID uint, query string, conversationID uint, limit int) ([]models.Message, error) {
	return nil, nil
}

func (s *stubMessageRepo) LatestForConversation(ctx context.Context, conversationID uint) (models.Message, error) {
	return models.Message{}, gorm.ErrRecordNotFound
}

func (s *stubMessageRepo) CountAfter(ctx context.Context, conversationID, afterID uint) (int64, error) {
	return 0, nil
}

type stubMentionService struct {
	users    []models.User
	mentions []MentionInput
}

func (s *stubMentionService) ParseMentions(ctx context.Context, text string) ([]models.User, error) {
	return s.users, nil
}

func (s *stubMentionService) CreateMention(ctx context.Context, input MentionInput) (models.Mention, error) {
	s.mentions = append(s.mentions, input)
	return models.Mention{ID: uint(len(s.mentions))}, nil
}

func (s *stubMentionService) ListForSubject(ctx context.Context, mentionableType string, mentionableID uint) ([]dto.MentionResponse, error) {
	return nil, nil
}

func newTestMessageService(messages *stubMessageRepo, conversations *stubConversationRepo, mentions MentionService, activities ActivityRecorder) MessageService {
	return NewMessageService(messages, conversations, mentions, &stubNotificationPublisher{}, activities, nil, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestMessageServiceSendPersistsAndRecordsActivity(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}
	messages := newStubMessageRepo()
	activities := &stubActivityRecorder{}
	svc := newTestMessageService(messages, conversations, &stubMentionService{}, activities)

	sent, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "hello there"})
	require.NoError(t, err)
	require.NotZero(t, sent.ID)
	require.Equal(t, models.MessageTypeText, sent.Type)
	require.Len(t, activities.records, 1)
	require.Equal(t, models.ActivityTypeMessageSent, activities.records[0].ActivityType)
}

func TestMessageServiceSendRejectsNonParticipant(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}
	svc := newTestMessageService(newStubMessageRepo(), conversations, &stubMentionService{}, &stubActivityRecorder{})

	_, err := svc.Send(context.Background(), 1, 99, dto.MessageSendRequest{Content: "hi"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMessageServiceSendStripsMarkupAndRequiresContent(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1}}}
	svc := newTestMessageService(newStubMessageRepo(), conversations, &stubMentionService{}, &stubActivityRecorder{})

	sent, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "<script>alert(1)</script>ship it"})
	require.NoError(t, err)
	require.Equal(t, "ship it", sent.Content)

	_, err = svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "<script>alert(1)</script>"})
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestMessageServiceSendCreatesMentionsExceptSelf(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}
	mentions := &stubMentionService{users: []models.User{{ID: 1, Username: "sender"}, {ID: 2, Username: "peer"}}}
	svc := newTestMessageService(newStubMessageRepo(), conversations, mentions, &stubActivityRecorder{})

	_, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "hey @peer and @sender"})
	require.NoError(t, err)
	require.Len(t, mentions.mentions, 1)
	require.Equal(t, uint(2), mentions.mentions[0].MentionedUserID)
	require.Equal(t, "message", mentions.mentions[0].MentionableType)
}

func TestMessageServiceSendSurvivesSideEffectFailures(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1}}}
	activities := &stubActivityRecorder{err: context.DeadlineExceeded}
	svc := newTestMessageService(newStubMessageRepo(), conversations, &stubMentionService{}, activities)

	sent, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "still delivered"})
	require.NoError(t, err)
	require.NotZero(t, sent.ID)
}

func TestMessageServiceEditEnforcesSenderAndTombstone(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}
	messages := newStubMessageRepo()
	svc := newTestMessageService(messages, conversations, &stubMentionService{}, &stubActivityRecorder{})

	sent, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), sent.ID, 2, dto.MessageEditRequest{Content: "hijack"})
	require.ErrorIs(t, err, ErrForbidden)

	edited, err := svc.Edit(context.Background(), sent.ID, 1, dto.MessageEditRequest{Content: "v2"})
	require.NoError(t, err)
	require.Equal(t, "v2", edited.Content)
	require.True(t, edited.IsEdited)

	require.NoError(t, svc.Delete(context.Background(), sent.ID, 1))

	_, err = svc.Edit(context.Background(), sent.ID, 1, dto.MessageEditRequest{Content: "v3"})
	require.ErrorIs(t, err, ErrNotFound)
}

// listingConversationRepo reports one conversation with a last message so the
// summary path consults the last-message cache.
type listingConversationRepo struct {
	stubConversationRepo
}

func (s *listingConversationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return []models.Conversation{{ID: 1, Type: models.ConversationTypeGroup, Name: "Platform Team", LastMessageID: 1}}, nil
}

func newCacheBackedServices(t *testing.T) (MessageService, ConversationService) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewLastMessageCache(client, "wren", zerolog.Nop())
	conversations := &listingConversationRepo{stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}}
	messages := newStubMessageRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())

	msgSvc := NewMessageService(messages, conversations, &stubMentionService{}, &stubNotificationPublisher{}, &stubActivityRecorder{}, cache, validate, zerolog.Nop())
	convSvc := NewConversationService(conversations, messages, cache, validate, zerolog.Nop())
	return msgSvc, convSvc
}

func TestMessageServiceDeleteEvictsCachedLastMessage(t *testing.T) {
	msgSvc, convSvc := newCacheBackedServices(t)

	sent, err := msgSvc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "quarterly numbers"})
	require.NoError(t, err)

	summaries, err := convSvc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].LastMessage)
	require.Equal(t, "quarterly numbers", summaries[0].LastMessage.Content)

	require.NoError(t, msgSvc.Delete(context.Background(), sent.ID, 1))

	// The tombstoned content must not keep rendering out of the cache.
	summaries, err = convSvc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Nil(t, summaries[0].LastMessage)
}

func TestMessageServiceEditEvictsCachedLastMessage(t *testing.T) {
	msgSvc, convSvc := newCacheBackedServices(t)

	sent, err := msgSvc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "draft"})
	require.NoError(t, err)

	_, err = msgSvc.Edit(context.Background(), sent.ID, 1, dto.MessageEditRequest{Content: "final"})
	require.NoError(t, err)

	summaries, err := convSvc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	if summaries[0].LastMessage != nil {
		require.Equal(t, "final", summaries[0].LastMessage.Content)
	}
}

func TestMessageServiceDeleteIsIdempotentAndSenderOnly(t *testing.T) {
	conversations := &stubConversationRepo{participants: map[uint][]uint{1: {1, 2}}}
	messages := newStubMessageRepo()
	svc := newTestMessageService(messages, conversations, &stubMentionService{}, &stubActivityRecorder{})

	sent, err := svc.Send(context.Background(), 1, 1, dto.MessageSendRequest{Content: "to delete"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), sent.ID, 2), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), sent.ID, 1))
	require.NoError(t, svc.Delete(context.Background(), sent.ID, 1))

	stored, err := messages.FindByID(context.Background(), sent.ID)
	require.NoError(t, err)
	require.True(t, stored.IsDeleted)
	require.Empty(t, stored.Content)
}
