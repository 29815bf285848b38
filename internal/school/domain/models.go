// Package domain contains persistence models for schools and their
// per-period financial snapshots.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents lifecycle states for a school.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// School belongs to exactly one franchisor. Schools are never hard-deleted;
// status changes go through the lifecycle service.
type School struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FranchisorID snowflake.ID `gorm:"not null;index" json:"franchisor_id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Status       Status       `gorm:"type:text;not null;index" json:"status"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (School) TableName() string { return "schools" }

// FinancialSnapshot is the per-school ledger snapshot for one reporting
// period (period is a month key, "YYYY-MM"). An external billing system
// supplies the figures; the rollup engine treats them as given.
type FinancialSnapshot struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID          snowflake.ID `gorm:"not null;uniqueIndex:ux_school_period" json:"school_id"`
	Period            string       `gorm:"type:text;not null;uniqueIndex:ux_school_period" json:"period"`
	ReceivedCents     int64        `gorm:"not null" json:"received_cents"`
	OpenCents         int64        `gorm:"not null" json:"open_cents"`
	OverdueCents      int64        `gorm:"not null" json:"overdue_cents"`
	OverdueItemsCount int          `gorm:"not null" json:"overdue_items_count"`
	MaxOverdueDays    int          `gorm:"not null" json:"max_overdue_days"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (FinancialSnapshot) TableName() string { return "school_financial_snapshots" }

// FinancialRow is a school joined with its summed snapshot figures for the
// requested period range. Schools without a snapshot report zeros.
type FinancialRow struct {
	SchoolID          snowflake.ID `gorm:"column:school_id" json:"school_id"`
	SchoolName        string       `gorm:"column:school_name" json:"school_name"`
	SchoolStatus      Status       `gorm:"column:school_status" json:"school_status"`
	FranchisorID      snowflake.ID `gorm:"column:franchisor_id" json:"franchisor_id"`
	FranchisorName    string       `gorm:"column:franchisor_name" json:"franchisor_name"`
	ReceivedCents     int64        `gorm:"column:received_cents" json:"received_cents"`
	OpenCents         int64        `gorm:"column:open_cents" json:"open_cents"`
	OverdueCents      int64        `gorm:"column:overdue_cents" json:"overdue_cents"`
	OverdueItemsCount int          `gorm:"column:overdue_items_count" json:"overdue_items_count"`
	MaxOverdueDays    int          `gorm:"column:max_overdue_days" json:"max_overdue_days"`
}

var (
	ErrNotFound           = errors.New("school_not_found")
	ErrInvalidName        = errors.New("invalid_school_name")
	ErrFranchisorRequired = errors.New("invalid_school_franchisor")
	ErrInvalidPeriod      = errors.New("invalid_snapshot_period")
)
