package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wrenhq/wren-social-api/internal/dto"
)

const lastMessageTTL = 30 * time.Minute

// LastMessageCache keeps the newest message of each conversation in Redis so
// conversation-list rendering avoids one query per row. It is purely an
// optimization: every accessor degrades to a nil result when Redis is down or
// unconfigured.
type LastMessageCache struct {
	redis  *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewLastMessageCache builds the cache. A nil client or empty channel base
// yields a cache that is always a miss.
func NewLastMessageCache(redisClient *redis.Client, channelBase string, logger zerolog.Logger) *LastMessageCache {
	prefix := ""
	if channelBase != "" {
		prefix = channelBase + ":conversations:last"
	}

	return &LastMessageCache{
		redis:  redisClient,
		prefix: prefix,
		logger: logger.With().Str("component", "last_message_cache").Logger(),
	}
}

// Set stores the message as the conversation's newest. Failures are logged
// and swallowed.
func (c *LastMessageCache) Set(ctx context.Context, message dto.MessageResponse) {
	if c == nil || c.redis == nil || c.prefix == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to marshal last message for cache")
		return
	}

	key := fmt.Sprintf("%s:%d", c.prefix, message.ConversationID)
	if err := c.redis.Set(ctx, key, payload, lastMessageTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache last message")
	}
}

// Invalidate drops the conversation's cached entry so the next list render
// falls back to storage. Called when the cached message may have changed
// underneath the cache, such as an edit or a tombstone delete.
func (c *LastMessageCache) Invalidate(ctx context.Context, conversationID uint) {
	if c == nil || c.redis == nil || c.prefix == "" {
		return
	}

	key := fmt.Sprintf("%s:%d", c.prefix, conversationID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate last message cache")
	}
}

// Get returns the cached newest message or nil on any miss or failure.
func (c *LastMessageCache) Get(ctx context.Context, conversationID uint) *dto.MessageResponse {
	if c == nil || c.redis == nil || c.prefix == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%d", c.prefix, conversationID)
	result, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var message dto.MessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		c.logger.Warn().Err(err).Msg("failed to unmarshal cached last message")
		return nil
	}

	return &message
}
