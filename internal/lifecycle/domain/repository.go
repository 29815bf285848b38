package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// HistoryRepository persists the audit trail. It exposes no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, db *gorm.DB, record *StatusHistoryRecord) error
	ListByEntity(ctx context.Context, db *gorm.DB, kind EntityKind, entityID snowflake.ID) ([]StatusHistoryRecord, error)
	LatestByEntity(ctx context.Context, db *gorm.DB, kind EntityKind, entityID snowflake.ID) (*StatusHistoryRecord, error)
}

// StatusStore is the slice of an entity repository the state machine needs.
// The franchisor, school and subscription repositories all satisfy it.
type StatusStore interface {
	CurrentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID) (string, error)
	UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, at time.Time) (bool, error)
}
