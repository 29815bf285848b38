package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	FranchisorID *snowflake.ID
	Status       Status
	NameContains string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// FinancialFilter selects which snapshots feed a rollup. An empty period
// range means "latest period on record".
type FinancialFilter struct {
	FranchisorID *snowflake.ID
	SchoolID     *snowflake.ID
	PeriodFrom   string
	PeriodTo     string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, school *School) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*School, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]School, error)
	CountByStatus(ctx context.Context, db *gorm.DB, franchisorID *snowflake.ID) (map[Status]int64, error)

	UpsertSnapshot(ctx context.Context, db *gorm.DB, snapshot *FinancialSnapshot) error
	LatestPeriod(ctx context.Context, db *gorm.DB) (string, error)
	ListFinancials(ctx context.Context, db *gorm.DB, filter FinancialFilter) ([]FinancialRow, error)

	// CurrentStatus and UpdateStatusCAS implement the lifecycle status store.
	CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error)
	UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error)
}
