package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/lifecycle/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.HistoryRepository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, record *domain.StatusHistoryRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListByEntity(ctx context.Context, db *gorm.DB, kind domain.EntityKind, entityID snowflake.ID) ([]domain.StatusHistoryRecord, error) {
	var records []domain.StatusHistoryRecord
	err := db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("occurred_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) LatestByEntity(ctx context.Context, db *gorm.DB, kind domain.EntityKind, entityID snowflake.ID) (*domain.StatusHistoryRecord, error) {
	var record domain.StatusHistoryRecord
	err := db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("occurred_at desc, id desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
