package repositories

import (
	"context"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"strconv"
	"sync"
	"time"
)

// MemoryConversations keeps records for the process lifetime only; a restart resets every user.
type MemoryConversations struct {
	mu          sync.Mutex
	cache       *gocache.Cache
	defaultMode models.Mode
}

func NewMemoryConversations(defaultMode models.Mode) *MemoryConversations {
	return &MemoryConversations{
		cache:       gocache.New(gocache.NoExpiration, 0),
		defaultMode: defaultMode,
	}
}

func (m *MemoryConversations) Get(_ context.Context, userID int64) models.ConversationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(userID)
}

func (m *MemoryConversations) Reset(_ context.Context, userID int64) models.ConversationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := models.NewConversationRecord(userID, m.defaultMode)
	m.cache.Set(conversationKey(userID), record, gocache.NoExpiration)
	return record
}

func (m *MemoryConversations) Touch(_ context.Context, userID int64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.getLocked(userID)
	record.LastSeenAt = now
	m.cache.Set(conversationKey(userID), record, gocache.NoExpiration)
}

func (m *MemoryConversations) Save(_ context.Context, record models.ConversationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Set(conversationKey(record.UserID), record, gocache.NoExpiration)
	return nil
}

func (m *MemoryConversations) Count() int {
	return m.cache.ItemCount()
}

func (m *MemoryConversations) getLocked(userID int64) models.ConversationRecord {
	key := conversationKey(userID)
	if cached, found := m.cache.Get(key); found {
		return cached.(models.ConversationRecord)
	}

	record := models.NewConversationRecord(userID, m.defaultMode)
	m.cache.Set(key, record, gocache.NoExpiration)
	return record
}

func conversationKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
