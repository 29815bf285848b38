package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/franqia/console/internal/school/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, school *domain.School) error {
	return db.WithContext(ctx).Create(school).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.School, error) {
	var school domain.School
	err := db.WithContext(ctx).First(&school, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &school, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.School, error) {
	stmt := db.WithContext(ctx).Model(&domain.School{})

	if filter.FranchisorID != nil {
		stmt = stmt.Where("franchisor_id = ?", *filter.FranchisorID)
	}
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

	var schools []domain.School
	if err := stmt.Order("id asc").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, franchisorID *snowflake.ID) (map[domain.Status]int64, error) {
	type row struct {
		Status domain.Status `gorm:"column:status"`
		Count  int64         `gorm:"column:count"`
	}

	stmt := db.WithContext(ctx).Model(&domain.School{}).Select("status, COUNT(1) AS count")
	if franchisorID != nil {
		stmt = stmt.Where("franchisor_id = ?", *franchisorID)
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

func (r *repo) UpsertSnapshot(ctx context.Context, db *gorm.DB, snapshot *domain.FinancialSnapshot) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "school_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"received_cents",
			"open_cents",
			"overdue_cents",
			"overdue_items_count",
			"max_overdue_days",
			"updated_at",
		}),
	}).Create(snapshot).Error
}

func (r *repo) LatestPeriod(ctx context.Context, db *gorm.DB) (string, error) {
	var period *string
	err := db.WithContext(ctx).
		Raw(`SELECT MAX(period) FROM school_financial_snapshots`).
		Scan(&period).Error
	if err != nil {
		return "", err
	}
	if period == nil {
		return "", nil
	}
	return *period, nil
}

func (r *repo) ListFinancials(ctx context.Context, db *gorm.DB, filter domain.FinancialFilter) ([]domain.FinancialRow, error) {
	query := `SELECT s.id AS school_id,
		       s.name AS school_name,
		       s.status AS school_status,
		       f.id AS franchisor_id,
		       f.name AS franchisor_name,
		       COALESCE(SUM(fs.received_cents), 0) AS received_cents,
		       COALESCE(SUM(fs.open_cents), 0) AS open_cents,
		       COALESCE(SUM(fs.overdue_cents), 0) AS overdue_cents,
		       COALESCE(SUM(fs.overdue_items_count), 0) AS overdue_items_count,
		       COALESCE(MAX(fs.max_overdue_days), 0) AS max_overdue_days
		FROM schools s
		JOIN franchisors f ON f.id = s.franchisor_id
		LEFT JOIN school_financial_snapshots fs
		  ON fs.school_id = s.id AND fs.period >= ? AND fs.period <= ?`
	args := []any{filter.PeriodFrom, filter.PeriodTo}

	conditions := make([]string, 0, 2)
	if filter.FranchisorID != nil {
		conditions = append(conditions, "s.franchisor_id = ?")
		args = append(args, *filter.FranchisorID)
	}
	if filter.SchoolID != nil {
		conditions = append(conditions, "s.id = ?")
		args = append(args, *filter.SchoolID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` GROUP BY s.id, s.name, s.status, f.id, f.name
		ORDER BY s.id ASC`

	var rows []domain.FinancialRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error) {
	school, err := r.FindByID(ctx, db, id)
	if err != nil {
		return "", err
	}
	return string(school.Status), nil
}

func (r *repo) UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE schools SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, at.UTC(), id, from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
