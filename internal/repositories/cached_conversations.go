package repositories

import (
	"context"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"time"
)

type conversationRepository interface {
	Get(ctx context.Context, userID int64) models.ConversationRecord
	ResetRecord(ctx context.Context, userID int64) (models.ConversationRecord, error)
	Touch(ctx context.Context, userID int64, now time.Time)
	Save(ctx context.Context, record models.ConversationRecord) error
}

// CachedConversations is a write-through cache in front of a durable repository.
// Expiry only drops cache entries, records stay in the repository.
type CachedConversations struct {
	repo  conversationRepository
	cache *gocache.Cache
}

func NewCachedConversations(repo conversationRepository) *CachedConversations {
	return &CachedConversations{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c *CachedConversations) Get(ctx context.Context, userID int64) models.ConversationRecord {
	if value, found := c.cache.Get(conversationKey(userID)); found {
		return value.(models.ConversationRecord)
	}

	record := c.repo.Get(ctx, userID)
	c.cache.SetDefault(conversationKey(userID), record)
	return record
}

// Reset drops the cache entry when the repository rejects the defaults,
// so the next Get reads what is actually stored.
func (c *CachedConversations) Reset(ctx context.Context, userID int64) models.ConversationRecord {
	record, err := c.repo.ResetRecord(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
		c.cache.Delete(conversationKey(userID))
		return record
	}
	c.cache.SetDefault(conversationKey(userID), record)
	return record
}

func (c *CachedConversations) Touch(ctx context.Context, userID int64, now time.Time) {
	c.repo.Touch(ctx, userID, now)
	if value, found := c.cache.Get(conversationKey(userID)); found {
		record := value.(models.ConversationRecord)
		record.LastSeenAt = now
		c.cache.SetDefault(conversationKey(userID), record)
	}
}

func (c *CachedConversations) Save(ctx context.Context, record models.ConversationRecord) error {
	if err := c.repo.Save(ctx, record); err != nil {
		c.cache.Delete(conversationKey(record.UserID))
		return err
	}
	c.cache.SetDefault(conversationKey(record.UserID), record)
	return nil
}
