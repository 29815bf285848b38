package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	SchoolID     *snowflake.ID
	FranchisorID *snowflake.ID
	Status       Status
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Subscription, error)
	CountByStatus(ctx context.Context, db *gorm.DB, franchisorID *snowflake.ID) (map[Status]int64, error)

	// CurrentStatus and UpdateStatusCAS implement the lifecycle status store.
	CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error)
	UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error)
}
