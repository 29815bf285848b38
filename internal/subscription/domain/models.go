// Package domain contains persistence models for school subscriptions.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents lifecycle states for a subscription. Cancelled is
// terminal; no action leads out of it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// Subscription is a school's plan agreement.
type Subscription struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	SchoolID      snowflake.ID `gorm:"not null;index" json:"school_id"`
	PlanCode      string       `gorm:"type:text;not null" json:"plan_code"`
	Status        Status       `gorm:"type:text;not null;index" json:"status"`
	StartDate     time.Time    `gorm:"not null" json:"start_date"`
	NextRenewalAt *time.Time   `gorm:"" json:"next_renewal_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

var (
	ErrNotFound       = errors.New("subscription_not_found")
	ErrInvalidPlan    = errors.New("invalid_subscription_plan")
	ErrSchoolRequired = errors.New("invalid_subscription_school")
)
