package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Status       Status
	NameContains string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, franchisor *Franchisor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Franchisor, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Franchisor, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)

	// CurrentStatus and UpdateStatusCAS implement the lifecycle status store.
	CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error)
	UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error)
}
