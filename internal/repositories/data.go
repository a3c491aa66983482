package repositories

import (
	"context"
	"github.com/maxaizer/tg-relay-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Data struct {
	db *gorm.DB
}

func NewDataRepository(db *gorm.DB) *Data {
	return &Data{db: db}
}

func (repo *Data) Save(ctx context.Context, id string, data []byte) error {
	err := repo.db.WithContext(ctx).Save(&models.ArbitraryData{
		ID:    id,
		Value: data,
	}).Error
	return errors.Wrapf(err, "failed to save data %q", id)
}

// Load returns nil without error when nothing is stored under id.
func (repo *Data) Load(ctx context.Context, id string) ([]byte, error) {
	data := &models.ArbitraryData{}
	err := repo.db.WithContext(ctx).First(data, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to load data %q", id)
	}
	return data.Value, nil
}

func (repo *Data) LoadAndRemove(ctx context.Context, id string) ([]byte, error) {
	data, err := repo.Load(ctx, id)
	if data == nil || err != nil {
		return nil, err
	}
	err = repo.Remove(ctx, id)
	return data, err
}

func (repo *Data) Remove(ctx context.Context, id string) error {
	err := repo.db.WithContext(ctx).Delete(&models.ArbitraryData{}, "id = ?", id).Error
	return errors.Wrapf(err, "failed to remove data %q", id)
}
