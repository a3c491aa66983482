package repositories

import (
	"context"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/maxaizer/tg-relay-bot/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"time"
)

// Conversations keeps conversation records in the database so they survive restarts.
// Read failures are logged and answered with defaults, the store never fails its callers.
type Conversations struct {
	db          *gorm.DB
	defaultMode models.Mode
}

func NewConversationRepository(db *gorm.DB, defaultMode models.Mode) *Conversations {
	return &Conversations{db: db, defaultMode: defaultMode}
}

func (repo *Conversations) Get(ctx context.Context, userID int64) models.ConversationRecord {
	defaults := models.NewConversationRecord(userID, repo.defaultMode)

	var record models.ConversationRecord
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Attrs(defaults).
		FirstOrCreate(&record).Error
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to get conversation of user %d: %v", userID, err)
		return defaults
	}
	return record
}

func (repo *Conversations) Reset(ctx context.Context, userID int64) models.ConversationRecord {
	record, err := repo.ResetRecord(ctx, userID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Error(err)
	}
	return record
}

// ResetRecord overwrites the stored record with defaults. The defaults are returned even on error.
func (repo *Conversations) ResetRecord(ctx context.Context, userID int64) (models.ConversationRecord, error) {
	record := models.NewConversationRecord(userID, repo.defaultMode)
	return record, repo.Save(ctx, record)
}

func (repo *Conversations) Touch(ctx context.Context, userID int64, now time.Time) {
	err := repo.db.WithContext(ctx).Model(&models.ConversationRecord{}).
		Where("user_id = ?", userID).
		Update("last_seen_at", now.UTC()).Error
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to touch conversation of user %d: %v", userID, err)
	}
}

func (repo *Conversations) Save(ctx context.Context, record models.ConversationRecord) error {
	err := repo.db.WithContext(ctx).Save(&record).Error
	return errors.Wrapf(err, "failed to save conversation of user %d", record.UserID)
}
