// Package domain contains persistence models for franchise networks.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents lifecycle states for a franchisor.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Franchisor is a franchise network that owns schools.
type Franchisor struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Status    Status       `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Franchisor) TableName() string { return "franchisors" }

var (
	ErrNotFound    = errors.New("franchisor_not_found")
	ErrInvalidName = errors.New("invalid_franchisor_name")
)
