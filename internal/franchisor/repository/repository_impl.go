package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/franchisor/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, franchisor *domain.Franchisor) error {
	return db.WithContext(ctx).Create(franchisor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Franchisor, error) {
	var franchisor domain.Franchisor
	err := db.WithContext(ctx).First(&franchisor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &franchisor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Franchisor, error) {
	stmt := db.WithContext(ctx).Model(&domain.Franchisor{})

	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if name := strings.TrimSpace(filter.NameContains); name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	var franchisors []domain.Franchisor
	if err := stmt.Order("id asc").Find(&franchisors).Error; err != nil {
		return nil, err
	}
	return franchisors, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status `gorm:"column:status"`
		Count  int64         `gorm:"column:count"`
	}
	var rows []row
	err := db.WithContext(ctx).
		Raw(`SELECT status, COUNT(1) AS count FROM franchisors GROUP BY status`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Count
	}
	return counts, nil
}

func (r *repo) CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error) {
	franchisor, err := r.FindByID(ctx, db, id)
	if err != nil {
		return "", err
	}
	return string(franchisor.Status), nil
}

func (r *repo) UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE franchisors SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at.UTC(), id, from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
