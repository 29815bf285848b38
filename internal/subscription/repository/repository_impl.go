package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *domain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Subscription, error) {
	var subscription domain.Subscription
	err := db.WithContext(ctx).First(&subscription, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Subscription, error) {
	stmt := db.WithContext(ctx).Model(&domain.Subscription{})

	if filter.SchoolID != nil {
		stmt = stmt.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.FranchisorID != nil {
		stmt = stmt.Where("school_id IN (SELECT id FROM schools WHERE franchisor_id = ?)", *filter.FranchisorID)
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	var subscriptions []domain.Subscription
	if err := stmt.Order("id asc").Find(&subscriptions).Error; err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, franchisorID *snowflake.ID) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status `gorm:"column:status"`
		Count  int64         `gorm:"column:count"`
	}

	stmt := db.WithContext(ctx).Model(&domain.Subscription{}).Select("status, COUNT(1) AS count")
	if franchisorID != nil {
		stmt = stmt.Where("school_id IN (SELECT id FROM schools WHERE franchisor_id = ?)", *franchisorID)
	}

	var rows []row
	if err := stmt.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Count
	}
	return counts, nil
}

func (r *repo) CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error) {
	subscription, err := r.FindByID(ctx, db, id)
	if err != nil {
		return "", err
	}
	return string(subscription.Status), nil
}

func (r *repo) UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at.UTC(), id, from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
